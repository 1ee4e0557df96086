package model

// QuestCategory is one of the seven life-skill areas quests are filed under.
type QuestCategory string

const (
	CategoryPersonalCare    QuestCategory = "personal_care"
	CategoryHomeLiving      QuestCategory = "home_living"
	CategoryTimeManagement  QuestCategory = "time_management"
	CategorySocial          QuestCategory = "social"
	CategoryCommunity       QuestCategory = "community"
	CategoryWorkSkills      QuestCategory = "work_skills"
	CategoryDigitalLiteracy QuestCategory = "digital_literacy"
)

// AllCategories lists every catalog category, in catalog order.
func AllCategories() []QuestCategory {
	return []QuestCategory{
		CategoryPersonalCare,
		CategoryHomeLiving,
		CategoryTimeManagement,
		CategorySocial,
		CategoryCommunity,
		CategoryWorkSkills,
		CategoryDigitalLiteracy,
	}
}

type CognitiveLoad string

const (
	CognitiveLoadLow      CognitiveLoad = "low"
	CognitiveLoadModerate CognitiveLoad = "moderate"
	CognitiveLoadHigh     CognitiveLoad = "high"
)

type HazardLevel string

const (
	HazardNone   HazardLevel = "none"
	HazardLow    HazardLevel = "low"
	HazardMedium HazardLevel = "medium"
	HazardHigh   HazardLevel = "high"
)

type SkillImportance string

const (
	ImportanceCritical  SkillImportance = "critical"
	ImportanceImportant SkillImportance = "important"
	ImportanceHelpful   SkillImportance = "helpful"
)

// Weight is the multiplier a requirement of this importance contributes to
// the competency score.
func (i SkillImportance) Weight() float64 {
	switch i {
	case ImportanceCritical:
		return 1.0
	case ImportanceImportant:
		return 0.7
	case ImportanceHelpful:
		return 0.4
	}
	return 0.4
}

// SkillRequirement is one entry of a quest's per-skill requirement map.
type SkillRequirement struct {
	MinimumLevel int             `json:"minimumLevel"`
	Importance   SkillImportance `json:"importance"`
	CanAdapt     bool            `json:"canAdapt"`
}

type SafetyRequirements struct {
	MinimumAge               int         `json:"minimumAge"`
	AdultSupervisionRequired bool        `json:"adultSupervisionRequired"`
	HazardLevel              HazardLevel `json:"hazardLevel"`
	GuardianConsentRequired  bool        `json:"guardianConsentRequired"`
	EmergencyProcedures      []string    `json:"emergencyProcedures,omitempty"`
}

// QuestDuration brackets a session in minutes.
type QuestDuration struct {
	Minimum  int  `json:"minimum"`
	Typical  int  `json:"typical"`
	Maximum  int  `json:"maximum"`
	CanPause bool `json:"canPause"`
}

type MaterialType string

const (
	MaterialVisual      MaterialType = "visual"
	MaterialAudio       MaterialType = "audio"
	MaterialVideo       MaterialType = "video"
	MaterialText        MaterialType = "text"
	MaterialInteractive MaterialType = "interactive"
)

type SupportingMaterial struct {
	Type          MaterialType `json:"type"`
	Content       string       `json:"content"`
	URL           string       `json:"url,omitempty"`
	Accessibility []string     `json:"accessibility,omitempty"`
	Required      bool         `json:"required"`
}

type CelebrationStyle string

const (
	CelebrationQuiet        CelebrationStyle = "quiet"
	CelebrationModerate     CelebrationStyle = "moderate"
	CelebrationEnthusiastic CelebrationStyle = "enthusiastic"
)

type Rewards struct {
	XP               int              `json:"xp"`
	Badges           []string         `json:"badges,omitempty"`
	Unlocks          []string         `json:"unlocks,omitempty"`
	CelebrationStyle CelebrationStyle `json:"celebrationStyle"`
}

type ImpactLevel string

const (
	ImpactMinor       ImpactLevel = "minor"
	ImpactModerate    ImpactLevel = "moderate"
	ImpactSignificant ImpactLevel = "significant"
)

// Rank orders impact levels for the adaptation sort (significant first).
func (l ImpactLevel) Rank() int {
	switch l {
	case ImpactSignificant:
		return 3
	case ImpactModerate:
		return 2
	case ImpactMinor:
		return 1
	}
	return 0
}

// QuestModification is a single presentation or structure change applied to
// a quest before delivery. Target/Action pairs drive ApplyAdaptations.
type QuestModification struct {
	Target       string      `json:"target"` // steps|duration|supports|presentation|feedback|requirements
	Action       string      `json:"action"` // add|remove|replace|simplify|enhance|reorder
	Content      string      `json:"content"`
	Reason       string      `json:"reason"`
	ImpactLevel  ImpactLevel `json:"impactLevel"`
	PreserveCore bool        `json:"preserveCore"`
}

// Key identifies an adaptation family for effectiveness tracking.
func (m QuestModification) Key() string {
	return m.Target + "_" + m.Action
}

type QuestVariant struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name"`
	AdaptationType       string              `json:"adaptationType"` // difficulty|support|duration|environment|sensory|cognitive
	Modifications        []QuestModification `json:"modifications"`
	ApplicableConditions []string            `json:"applicableConditions,omitempty"`
}

type AdaptationPoint struct {
	Step              int      `json:"step"`
	AdaptationType    []string `json:"adaptationType"`
	TriggerConditions []string `json:"triggerConditions"`
}

// CompletionPatterns record observed completion rates keyed by context
// dimension value, e.g. timeOfDay["morning"] = 0.9.
type CompletionPatterns struct {
	TimeOfDay    map[string]float64 `json:"timeOfDay,omitempty"`
	EnergyLevel  map[string]float64 `json:"energyLevel,omitempty"`
	SupportLevel map[string]float64 `json:"supportLevel,omitempty"`
}

type SupportOption struct {
	Level    SupportLevelType `json:"level"`
	Content  string           `json:"content"`
	Triggers []string         `json:"triggers,omitempty"`
}

type AlternativeApproach struct {
	Condition        string   `json:"condition"`
	AlternativeSteps []string `json:"alternativeSteps"`
}

// QuestStep is one ordered step of a quest. Order values are contiguous
// from 1 within a quest.
type QuestStep struct {
	ID                    string                `json:"id"`
	Order                 int                   `json:"order"`
	Title                 string                `json:"title"`
	Description           string                `json:"description"`
	EstimatedTime         int                   `json:"estimatedTime"`
	RequiredTools         []string              `json:"requiredTools,omitempty"`
	OptionalTools         []string              `json:"optionalTools,omitempty"`
	SafetyNotes           []string              `json:"safetyNotes,omitempty"`
	SupportOptions        []SupportOption       `json:"supportOptions,omitempty"`
	ValidationCriteria    []string              `json:"validationCriteria,omitempty"`
	CompletionEvidence    string                `json:"completionEvidence"` // none|self_report|photo|demonstration|quiz
	Adaptations           []QuestModification   `json:"adaptations,omitempty"`
	AlternativeApproaches []AlternativeApproach `json:"alternativeApproaches,omitempty"`
	CommonStruggles       []string              `json:"commonStruggles,omitempty"`
	HelpResources         []string              `json:"helpResources,omitempty"`
	EncouragementMessages []string              `json:"encouragementMessages,omitempty"`
}

// Quest is a structured life-skill activity from the catalog.
// Nested value objects live in json columns; the scalar fields that queries
// filter and sort on are real columns with indexes.
// swagger:model
type Quest struct {
	UUIDBase
	Title       string        `gorm:"type:varchar(255);not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Category    QuestCategory `gorm:"type:varchar(32);index;not null" json:"category"`

	DifficultyLevel   int                         `gorm:"index" json:"difficultyLevel"` // 1-100
	CognitiveLoad     CognitiveLoad               `gorm:"type:varchar(16)" json:"cognitiveLoad"`
	SkillRequirements map[string]SkillRequirement `gorm:"type:json;serializer:json" json:"skillRequirements"`

	RequiredLocation    []Location       `gorm:"type:json;serializer:json" json:"requiredLocation"`
	MinimumSupportLevel SupportLevelType `gorm:"type:varchar(32)" json:"minimumSupportLevel"`
	RequiredTools       []string         `gorm:"type:json;serializer:json" json:"requiredTools"`
	OptionalTools       []string         `gorm:"type:json;serializer:json" json:"optionalTools"`

	SafetyRequirements SafetyRequirements `gorm:"type:json;serializer:json" json:"safetyRequirements"`

	EstimatedDuration QuestDuration `gorm:"type:json;serializer:json" json:"estimatedDuration"`
	OptimalTimeOfDay  []TimeOfDay   `gorm:"type:json;serializer:json" json:"optimalTimeOfDay"`
	EnergyRequirement int           `json:"energyRequirement"` // 1-100

	SupportingMaterials []SupportingMaterial `gorm:"type:json;serializer:json" json:"supportingMaterials"`
	Rewards             Rewards              `gorm:"type:json;serializer:json" json:"rewards"`

	Variants         []QuestVariant    `gorm:"type:json;serializer:json" json:"variants"`
	AdaptationPoints []AdaptationPoint `gorm:"type:json;serializer:json" json:"adaptationPoints"`

	Tags               []string           `gorm:"type:json;serializer:json" json:"tags"`
	SuccessRate        float64            `json:"successRate"`   // 0-1
	AverageRating      float64            `json:"averageRating"` // 0-5
	CompletionPatterns CompletionPatterns `gorm:"type:json;serializer:json" json:"completionPatterns"`

	Steps []QuestStep `gorm:"type:json;serializer:json" json:"steps"`
}

// HasTag reports whether the quest carries the given tag.
func (q *Quest) HasTag(tag string) bool {
	for _, t := range q.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AllowsLocation reports whether the quest can run at the given location.
// An empty RequiredLocation list means anywhere.
func (q *Quest) AllowsLocation(loc Location) bool {
	if len(q.RequiredLocation) == 0 {
		return true
	}
	for _, l := range q.RequiredLocation {
		if l == loc {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to mutate without touching the catalog's
// instance. Adaptation application always works on a clone.
func (q *Quest) Clone() *Quest {
	cp := *q

	if q.SkillRequirements != nil {
		cp.SkillRequirements = make(map[string]SkillRequirement, len(q.SkillRequirements))
		for k, v := range q.SkillRequirements {
			cp.SkillRequirements[k] = v
		}
	}
	cp.RequiredLocation = append([]Location(nil), q.RequiredLocation...)
	cp.RequiredTools = append([]string(nil), q.RequiredTools...)
	cp.OptionalTools = append([]string(nil), q.OptionalTools...)
	cp.OptimalTimeOfDay = append([]TimeOfDay(nil), q.OptimalTimeOfDay...)
	cp.SupportingMaterials = append([]SupportingMaterial(nil), q.SupportingMaterials...)
	cp.Variants = append([]QuestVariant(nil), q.Variants...)
	cp.AdaptationPoints = append([]AdaptationPoint(nil), q.AdaptationPoints...)
	cp.Tags = append([]string(nil), q.Tags...)

	cp.SafetyRequirements.EmergencyProcedures = append([]string(nil), q.SafetyRequirements.EmergencyProcedures...)
	cp.Rewards.Badges = append([]string(nil), q.Rewards.Badges...)
	cp.Rewards.Unlocks = append([]string(nil), q.Rewards.Unlocks...)

	cp.CompletionPatterns = CompletionPatterns{
		TimeOfDay:    copyFloatMap(q.CompletionPatterns.TimeOfDay),
		EnergyLevel:  copyFloatMap(q.CompletionPatterns.EnergyLevel),
		SupportLevel: copyFloatMap(q.CompletionPatterns.SupportLevel),
	}

	cp.Steps = make([]QuestStep, len(q.Steps))
	for i, s := range q.Steps {
		sc := s
		sc.RequiredTools = append([]string(nil), s.RequiredTools...)
		sc.OptionalTools = append([]string(nil), s.OptionalTools...)
		sc.SafetyNotes = append([]string(nil), s.SafetyNotes...)
		sc.SupportOptions = append([]SupportOption(nil), s.SupportOptions...)
		sc.ValidationCriteria = append([]string(nil), s.ValidationCriteria...)
		sc.Adaptations = append([]QuestModification(nil), s.Adaptations...)
		sc.AlternativeApproaches = append([]AlternativeApproach(nil), s.AlternativeApproaches...)
		sc.CommonStruggles = append([]string(nil), s.CommonStruggles...)
		sc.HelpResources = append([]string(nil), s.HelpResources...)
		sc.EncouragementMessages = append([]string(nil), s.EncouragementMessages...)
		cp.Steps[i] = sc
	}

	return &cp
}

func copyFloatMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
