package topic

import "strings"

// Label names the tutoring topic a question is about.
type Label string

const (
	General    Label = "general"
	ROS        Label = "ros"
	PhysicalAI Label = "physical_ai"
	Sensors    Label = "sensors"
	Simulation Label = "simulation"
)

type rule struct {
	keyword string
	label   Label
	reply   string
}

// rules are checked in order; the first keyword contained in the message wins.
var rules = []rule{
	{
		keyword: "ros",
		label:   ROS,
		reply:   "ROS 2 (Robot Operating System 2) is a flexible framework for writing robot software. It provides tools, libraries, and conventions to simplify creating complex robot behavior.",
	},
	{
		keyword: "physical ai",
		label:   PhysicalAI,
		reply:   "Physical AI refers to AI systems that interact with the physical world through embodied agents like robots. It combines perception, reasoning, and action in real environments.",
	},
	{
		keyword: "sensor",
		label:   Sensors,
		reply:   "Sensors in robotics include LIDAR for distance measurement, cameras for vision, IMUs for orientation, and force sensors for tactile feedback.",
	},
	{
		keyword: "simulation",
		label:   Simulation,
		reply:   "Simulation environments like Gazebo and Isaac Sim allow testing robot behaviors in virtual environments before deploying to real hardware.",
	},
}

// DefaultReply is returned when no keyword matches.
const DefaultReply = "I'm an AI tutor for Physical AI. I can help you understand robotics, ROS 2, and simulation. What would you like to learn?"

// Classify maps a message to the first matching topic, or General.
func Classify(message string) Label {
	if r, ok := match(message); ok {
		return r.label
	}
	return General
}

// Reply returns the canned tutor answer for a message.
func Reply(message string) string {
	if r, ok := match(message); ok {
		return r.reply
	}
	return DefaultReply
}

// ReplyFor returns the canned answer for a topic label.
func ReplyFor(label Label) string {
	for _, r := range rules {
		if r.label == label {
			return r.reply
		}
	}
	return DefaultReply
}

func match(message string) (rule, bool) {
	normalized := strings.ToLower(message)
	for _, r := range rules {
		if strings.Contains(normalized, r.keyword) {
			return r, true
		}
	}
	return rule{}, false
}
