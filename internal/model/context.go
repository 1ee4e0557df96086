package model

// Location is where the user currently is (and where a quest may run).
type Location string

const (
	LocationHome      Location = "home"
	LocationSchool    Location = "school"
	LocationCommunity Location = "community"
	LocationWorkplace Location = "workplace"
	LocationUnknown   Location = "unknown"
)

type TimeOfDay string

const (
	TimeEarlyMorning TimeOfDay = "early_morning"
	TimeMorning      TimeOfDay = "morning"
	TimeMidday       TimeOfDay = "midday"
	TimeAfternoon    TimeOfDay = "afternoon"
	TimeEvening      TimeOfDay = "evening"
	TimeNight        TimeOfDay = "night"
)

type EnergyLevel string

const (
	EnergyVeryLow  EnergyLevel = "very_low"
	EnergyLow      EnergyLevel = "low"
	EnergyModerate EnergyLevel = "moderate"
	EnergyHigh     EnergyLevel = "high"
	EnergyVeryHigh EnergyLevel = "very_high"
)

// Numeric returns the 1-100 equivalent used by the energy-alignment score.
func (e EnergyLevel) Numeric() float64 {
	switch e {
	case EnergyVeryLow:
		return 10
	case EnergyLow:
		return 30
	case EnergyModerate:
		return 50
	case EnergyHigh:
		return 70
	case EnergyVeryHigh:
		return 90
	}
	return 50
}

type StressLevel string

const (
	StressCalm        StressLevel = "calm"
	StressSlight      StressLevel = "slightly_stressed"
	StressModerate    StressLevel = "moderate_stress"
	StressHigh        StressLevel = "high_stress"
	StressOverwhelmed StressLevel = "overwhelmed"
)

type SocialContext string

const (
	SocialAlone      SocialContext = "alone"
	SocialWithFamily SocialContext = "with_family"
	SocialWithFriends SocialContext = "with_friends"
	SocialInGroup    SocialContext = "in_group"
	SocialPublic     SocialContext = "public"
)

// SupportLevelType is the ordinal assistance scale. Order matters: each
// level includes everything below it.
type SupportLevelType string

const (
	SupportIndependent      SupportLevelType = "independent"
	SupportMinimalPrompting SupportLevelType = "minimal_prompting"
	SupportVerbalGuidance   SupportLevelType = "verbal_guidance"
	SupportVisualSupports   SupportLevelType = "visual_supports"
	SupportHandsOn          SupportLevelType = "hands_on_assistance"
	SupportFull             SupportLevelType = "full_support"
)

// Ordinal maps the scale to independent=0 .. full_support=5. Unknown
// values rank as independent so malformed input never inflates support.
func (s SupportLevelType) Ordinal() int {
	switch s {
	case SupportIndependent:
		return 0
	case SupportMinimalPrompting:
		return 1
	case SupportVerbalGuidance:
		return 2
	case SupportVisualSupports:
		return 3
	case SupportHandsOn:
		return 4
	case SupportFull:
		return 5
	}
	return 0
}

// SupportAvailability describes the help the user can draw on right now.
type SupportAvailability struct {
	Type                 SupportLevelType `json:"type"`
	Availability         bool             `json:"availability"`
	SupportPersonPresent bool             `json:"supportPersonPresent"`
	SupportPersonRole    string           `json:"supportPersonRole,omitempty"`
	CommunicationStyle   string           `json:"communicationStyle,omitempty"`
	InterventionThreshold string          `json:"interventionThreshold,omitempty"`
}

// UserContext is the situational snapshot for one selection call. It is
// captured once per call and never mutated mid-pipeline.
type UserContext struct {
	CurrentLocation   Location            `json:"currentLocation"`
	TimeOfDay         TimeOfDay           `json:"timeOfDay"`
	EnergyLevel       EnergyLevel         `json:"energyLevel"`
	StressLevel       StressLevel         `json:"stressLevel"`
	MoodIndicators    []string            `json:"moodIndicators,omitempty"`
	RecentActivity    string              `json:"recentActivity,omitempty"`
	SocialContext     SocialContext       `json:"socialContext"`
	SupportAvailable  SupportAvailability `json:"supportAvailable"`
	MotivationLevel   string              `json:"motivationLevel,omitempty"`
	FocusCapacity     string              `json:"focusCapacity,omitempty"`
	SensoryEnvironment string             `json:"sensoryEnvironment,omitempty"`
	CommunicationMode string              `json:"communicationMode,omitempty"`
}

// EnvironmentalFactors describe the physical surroundings.
type EnvironmentalFactors struct {
	Location          Location `json:"location"`
	NoiseLevel        string   `json:"noiseLevel"` // quiet|moderate|noisy|overwhelming
	Distractions      []string `json:"distractions,omitempty"`
	SafetyLevel       string   `json:"safetyLevel"` // high|medium|low
	ToolsAvailable    []string `json:"toolsAvailable,omitempty"`
	SpaceConstraints  string   `json:"spaceConstraints,omitempty"` // unlimited|moderate|limited|very_limited
	LightingCondition string   `json:"lightingCondition,omitempty"`
	CrowdingLevel     string   `json:"crowdingLevel,omitempty"`
	AccessibilityNeeds []string `json:"accessibilityNeeds,omitempty"`
}

// TimeConstraints bound the session being planned.
type TimeConstraints struct {
	AvailableMinutes   int        `json:"availableMinutes"`
	HasDeadline        bool       `json:"hasDeadline"`
	DeadlineMinutes    int        `json:"deadlineMinutes,omitempty"` // minutes until the deadline
	FlexibleTiming     bool       `json:"flexibleTiming"`
	PreferredStartTime string     `json:"preferredStartTime,omitempty"`
	CanInterrupt       bool       `json:"canInterrupt"`
	MinimumSessionTime int        `json:"minimumSessionTime,omitempty"`
	PreferredSessionLength int    `json:"preferredSessionLength,omitempty"`
}
