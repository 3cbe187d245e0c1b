package types

import (
	"math"
	"time"
)

// UnitType is the unit a custom metric is tracked in.
type UnitType string

const (
	UnitMinutes UnitType = "minutes"
	UnitHours   UnitType = "hours"
	UnitCount   UnitType = "count"
	UnitBoolean UnitType = "boolean"
)

// MetricCategory tells whether a metric is a target to reach or a limit to stay under.
type MetricCategory string

const (
	CategoryPositive MetricCategory = "positive"
	CategoryNegative MetricCategory = "negative"
)

// LinkedField names the DailyLog field that backs a system metric.
type LinkedField string

const (
	FieldNone           LinkedField = ""
	FieldWorkoutMinutes LinkedField = "workoutMinutes"
	FieldDrinks         LinkedField = "drinks"
	FieldTVMinutes      LinkedField = "tvMinutes"
)

// DefaultMoodScore is the mood of a day nobody has rated yet.
const DefaultMoodScore = 50

// DailyLog is the persisted record for one calendar date.
type DailyLog struct {
	ID   string `json:"id"`
	Date Date   `json:"date"`

	// Positive inputs, minutes
	BuildingMinutes   int `json:"buildingMinutes"`
	MarketingMinutes  int `json:"marketingMinutes"`
	LevelingUpMinutes int `json:"levelingUpMinutes"`
	WorkoutMinutes    int `json:"workoutMinutes"`

	// Negative inputs
	Drinks    float64 `json:"drinks"`
	TVMinutes int     `json:"tvMinutes"`

	MoodScore  int    `json:"moodScore"`
	Reflection string `json:"reflection"`
	IsVacation bool   `json:"isVacation"`

	CustomMetrics map[string]float64 `json:"customMetrics,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MoodLevel maps the 0-100 mood score onto the 1-10 scale shown to the user.
func (l DailyLog) MoodLevel() int {
	return MoodLevel(float64(l.MoodScore))
}

// MoodLevel maps a 0-100 score (or an average of scores) onto 1-10.
func MoodLevel(score float64) int {
	return int(math.Round(score/100*9)) + 1
}

// MoodScoreForLevel converts a 1-10 level back to a 0-100 score.
func MoodScoreForLevel(level int) int {
	return int(math.Round(float64(level-1) * 100 / 9))
}

// GoldenMinutes is the sum of the three Golden Hours categories.
func (l DailyLog) GoldenMinutes() int {
	return l.BuildingMinutes + l.MarketingMinutes + l.LevelingUpMinutes
}

// CustomValue returns the value logged for a custom metric, 0 when absent.
func (l DailyLog) CustomValue(id string) float64 {
	return l.CustomMetrics[id]
}

// LogView is what a point lookup returns. Persisted is false when the
// record is a default that has never been written.
type LogView struct {
	DailyLog
	Persisted bool `json:"persisted"`
}

// LogUpdate is a partial update; nil fields are left untouched.
// CustomMetrics entries are merged key by key.
type LogUpdate struct {
	BuildingMinutes   *int               `json:"buildingMinutes,omitempty"`
	MarketingMinutes  *int               `json:"marketingMinutes,omitempty"`
	LevelingUpMinutes *int               `json:"levelingUpMinutes,omitempty"`
	WorkoutMinutes    *int               `json:"workoutMinutes,omitempty"`
	Drinks            *float64           `json:"drinks,omitempty"`
	TVMinutes         *int               `json:"tvMinutes,omitempty"`
	MoodScore         *int               `json:"moodScore,omitempty"`
	Reflection        *string            `json:"reflection,omitempty"`
	IsVacation        *bool              `json:"isVacation,omitempty"`
	CustomMetrics     map[string]float64 `json:"customMetrics,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u LogUpdate) IsEmpty() bool {
	return u.BuildingMinutes == nil && u.MarketingMinutes == nil &&
		u.LevelingUpMinutes == nil && u.WorkoutMinutes == nil &&
		u.Drinks == nil && u.TVMinutes == nil && u.MoodScore == nil &&
		u.Reflection == nil && u.IsVacation == nil && len(u.CustomMetrics) == 0
}

// Apply returns a copy of log with the update merged in.
// The custom metric map is copied, never shared with the input.
func (u LogUpdate) Apply(log DailyLog) DailyLog {
	if u.BuildingMinutes != nil {
		log.BuildingMinutes = *u.BuildingMinutes
	}
	if u.MarketingMinutes != nil {
		log.MarketingMinutes = *u.MarketingMinutes
	}
	if u.LevelingUpMinutes != nil {
		log.LevelingUpMinutes = *u.LevelingUpMinutes
	}
	if u.WorkoutMinutes != nil {
		log.WorkoutMinutes = *u.WorkoutMinutes
	}
	if u.Drinks != nil {
		log.Drinks = *u.Drinks
	}
	if u.TVMinutes != nil {
		log.TVMinutes = *u.TVMinutes
	}
	if u.MoodScore != nil {
		log.MoodScore = *u.MoodScore
	}
	if u.Reflection != nil {
		log.Reflection = *u.Reflection
	}
	if u.IsVacation != nil {
		log.IsVacation = *u.IsVacation
	}

	if len(log.CustomMetrics) > 0 || len(u.CustomMetrics) > 0 {
		merged := make(map[string]float64, len(log.CustomMetrics)+len(u.CustomMetrics))
		for k, v := range log.CustomMetrics {
			merged[k] = v
		}
		for k, v := range u.CustomMetrics {
			merged[k] = v
		}
		log.CustomMetrics = merged
	}
	return log
}

// WeeklyGoals holds the user's current weekly targets. There is no history.
type WeeklyGoals struct {
	BuildingHours   float64 `json:"buildingHours"`
	MarketingHours  float64 `json:"marketingHours"`
	LevelingUpHours float64 `json:"levelingUpHours"`
	WorkoutCount    int     `json:"workoutCount"`

	MaxDrinks  *float64 `json:"maxDrinks,omitempty"`
	MaxTVHours *float64 `json:"maxTvHours,omitempty"`
}

// DefaultGoals returns the goals of a fresh install: nothing set.
func DefaultGoals() WeeklyGoals {
	return WeeklyGoals{}
}

// GoalsUpdate is a partial update of WeeklyGoals.
type GoalsUpdate struct {
	BuildingHours   *float64 `json:"buildingHours,omitempty"`
	MarketingHours  *float64 `json:"marketingHours,omitempty"`
	LevelingUpHours *float64 `json:"levelingUpHours,omitempty"`
	WorkoutCount    *int     `json:"workoutCount,omitempty"`
	MaxDrinks       *float64 `json:"maxDrinks,omitempty"`
	MaxTVHours      *float64 `json:"maxTvHours,omitempty"`
}

// Apply returns goals with the update merged in.
func (u GoalsUpdate) Apply(g WeeklyGoals) WeeklyGoals {
	if u.BuildingHours != nil {
		g.BuildingHours = *u.BuildingHours
	}
	if u.MarketingHours != nil {
		g.MarketingHours = *u.MarketingHours
	}
	if u.LevelingUpHours != nil {
		g.LevelingUpHours = *u.LevelingUpHours
	}
	if u.WorkoutCount != nil {
		g.WorkoutCount = *u.WorkoutCount
	}
	if u.MaxDrinks != nil {
		v := *u.MaxDrinks
		g.MaxDrinks = &v
	}
	if u.MaxTVHours != nil {
		v := *u.MaxTVHours
		g.MaxTVHours = &v
	}
	return g
}

// VacationMode records whether the user is currently away.
type VacationMode struct {
	IsActive  bool  `json:"isActive"`
	StartDate *Date `json:"startDate"`
	EndDate   *Date `json:"endDate"`
}

// CustomMetric is a user- or system-defined tracked quantity.
type CustomMetric struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	UnitType    UnitType       `json:"unitType"`
	Category    MetricCategory `json:"category"`
	// WeeklyGoal is a target for positive metrics and a ceiling for negative
	// ones. For boolean metrics it counts days per week.
	WeeklyGoal float64   `json:"weeklyGoal"`
	Color      string    `json:"color"`
	Icon       string    `json:"icon,omitempty"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`

	IsSystemMetric bool        `json:"isSystemMetric,omitempty"`
	LinkedField    LinkedField `json:"linkedField,omitempty"`
}

// IsLimit reports whether the weekly goal acts as a ceiling.
func (m CustomMetric) IsLimit() bool {
	return m.Category == CategoryNegative
}

// NewCustomMetric is the input for creating a user metric (no generated fields).
type NewCustomMetric struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	UnitType    UnitType       `json:"unitType"`
	Category    MetricCategory `json:"category"`
	WeeklyGoal  float64        `json:"weeklyGoal"`
	Color       string         `json:"color,omitempty"`
	Icon        string         `json:"icon,omitempty"`
}

// CustomMetricUpdate is a partial update of a metric definition.
type CustomMetricUpdate struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	UnitType    *UnitType       `json:"unitType,omitempty"`
	Category    *MetricCategory `json:"category,omitempty"`
	WeeklyGoal  *float64        `json:"weeklyGoal,omitempty"`
	Color       *string         `json:"color,omitempty"`
	Icon        *string         `json:"icon,omitempty"`
	IsActive    *bool           `json:"isActive,omitempty"`
}

// Apply returns m with the update merged in.
func (u CustomMetricUpdate) Apply(m CustomMetric) CustomMetric {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.Description != nil {
		m.Description = *u.Description
	}
	if u.UnitType != nil {
		m.UnitType = *u.UnitType
	}
	if u.Category != nil {
		m.Category = *u.Category
	}
	if u.WeeklyGoal != nil {
		m.WeeklyGoal = *u.WeeklyGoal
	}
	if u.Color != nil {
		m.Color = *u.Color
	}
	if u.Icon != nil {
		m.Icon = *u.Icon
	}
	if u.IsActive != nil {
		m.IsActive = *u.IsActive
	}
	return m
}

// StreakData is the persisted streak state.
type StreakData struct {
	CurrentLoggingStreak  int   `json:"currentLoggingStreak"`
	CurrentBuildingStreak int   `json:"currentBuildingStreak"`
	LastLogDate           *Date `json:"lastLogDate"`
	LastBuildingDate      *Date `json:"lastBuildingDate"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	DaysLogged  int    `json:"days_logged"`
	MetricCount int    `json:"metric_count"`
}
