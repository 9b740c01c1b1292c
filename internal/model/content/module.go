package content

// Module is one course module shown in the content listing.
type Module struct {
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	Icon         string `json:"icon"`
	Description  string `json:"description"`
	ChapterCount int    `json:"chapter_count"`
}

// Seed returns the course modules of the Physical AI textbook in reading order.
func Seed() []Module {
	return []Module{
		{
			Slug:         "01-physical-ai-intro",
			Title:        "Introduction to Physical AI",
			Icon:         "🤖",
			Description:  "Fundamentals of Physical AI, its applications in robotics, and key concepts.",
			ChapterCount: 2,
		},
		{
			Slug:         "02-ros2",
			Title:        "ROS 2 Fundamentals",
			Icon:         "🔧",
			Description:  "Robot Operating System 2 architecture, nodes, topics, and services.",
			ChapterCount: 2,
		},
		{
			Slug:         "03-simulation",
			Title:        "Simulation Environments",
			Icon:         "🎮",
			Description:  "Using Gazebo, Isaac Sim for testing robotics applications.",
			ChapterCount: 1,
		},
		{
			Slug:         "04-isaac",
			Title:        "NVIDIA Isaac Platform",
			Icon:         "🎯",
			Description:  "Leveraging NVIDIA Isaac for robot development.",
			ChapterCount: 1,
		},
		{
			Slug:         "05-vla",
			Title:        "Vision-Language-Action Systems",
			Icon:         "🧠",
			Description:  "Advanced multimodal AI systems for intelligent behavior.",
			ChapterCount: 1,
		},
	}
}
