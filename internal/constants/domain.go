package constants

import "time"

// Activity categories shipped with the app. Categories are an open set;
// users may log under any name.
const (
	CategoryProfessional = "Professional"
	CategoryPersonal     = "Personal"
	CategorySelfCare     = "Self-Care"
)

// Priority of a to-do item
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// TodoStatus is the lifecycle state of a to-do item
type TodoStatus string

const (
	StatusPending    TodoStatus = "Pending"
	StatusInProgress TodoStatus = "In Progress"
	StatusCompleted  TodoStatus = "Completed"
)

// RewardCategories lists the reward categories offered when adding a reward.
var RewardCategories = []string{
	"Small Treat",
	"Entertainment",
	"Learning",
	"Self-Care",
	"Gaming",
	"Shopping",
	"Social",
	"Excursion",
	"Lazy Day",
	"Custom",
}

// Custom log limits
const (
	MinCustomPoints = 1
	MaxCustomPoints = 100
	MinEnergy       = 1
	MaxEnergy       = 5
	DefaultEnergy   = 3
)

// Default emotion vocabulary
var (
	DefaultEmotionStates  = []string{"Anxious", "Motivated", "Tired", "Sad", "Peaceful", "Euphoric"}
	DefaultNegativeStates = []string{"Anxious", "Sad", "Tired"}
	DefaultPositiveStates = []string{"Peaceful", "Euphoric"}
)

// Insight endpoint defaults
const (
	DefaultInsightBaseURL     = "http://localhost:11434/api"
	DefaultInsightModel       = "mistral"
	DefaultInsightMaxAttempts = 3
	DefaultInsightDelay       = 1 * time.Second
	DefaultInsightTimeout     = 60 * time.Second
	InsightProcessName        = "ollama"
)

// Analytics windows
const (
	RollingWindowDays   = 7
	RecentEnergyWindow  = 3
	LowEnergyThreshold  = 2.0
	HighEnergyThreshold = 4.0
	DashboardRecentRows = 5
)
