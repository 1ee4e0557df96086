package model

// Skill domain names used by the profile and by the domain→skill mapping
// in candidate generation.
const (
	DomainPersonalHealthCare    = "personalHealthCare"
	DomainTimeAndOrganization   = "timeAndOrganization"
	DomainHomeAndDailyLiving    = "homeAndDailyLiving"
	DomainSocialSkills          = "socialSkills"
	DomainCommunityParticipation = "communityParticipation"
	DomainWorkSkills            = "workSkills"
)

type BasicInfo struct {
	Age                      int      `json:"age"`
	NeurodivergentConditions []string `json:"neurodivergentConditions,omitempty"`
	SupportLevel             string   `json:"supportLevel"` // independent|some_support|significant_support
	PrimaryLanguage          string   `json:"primaryLanguage,omitempty"`
	CommunicationPreferences []string `json:"communicationPreferences,omitempty"`
}

// SkillDomain is the user's standing in one life-skill area.
type SkillDomain struct {
	CurrentLevel    int      `json:"currentLevel"` // 0-100
	Confidence      int      `json:"confidence"`   // 1-5
	AgeEquivalent   int      `json:"ageEquivalent,omitempty"`
	RecentProgress  int      `json:"recentProgress"` // -10..+10
	StrugglingAreas []string `json:"strugglingAreas,omitempty"`
	Strengths       []string `json:"strengths,omitempty"`
}

type CognitiveProfile struct {
	PreferredLearningStyle      []string `json:"preferredLearningStyle,omitempty"` // visual|auditory|kinesthetic|reading_writing
	AttentionSupports           []string `json:"attentionSupports,omitempty"`
	MotivationalFactors         []string `json:"motivationalFactors,omitempty"`
	ProcessingSpeed             string   `json:"processingSpeed,omitempty"` // slow|moderate|fast|variable
	WorkingMemoryCapacity       string   `json:"workingMemoryCapacity,omitempty"` // limited|moderate|strong
	ExecutiveFunctionChallenges []string `json:"executiveFunctionChallenges,omitempty"`
}

type SensoryProfile struct {
	Sensitivities        []string `json:"sensitivities,omitempty"`
	SeekingBehaviors     []string `json:"seekingBehaviors,omitempty"`
	RegulationStrategies []string `json:"regulationStrategies,omitempty"`
	EnvironmentalNeeds   []string `json:"environmentalNeeds,omitempty"`
}

type GuardianSettings struct {
	HasGuardian         bool     `json:"hasGuardian"`
	GuardianConsent     bool     `json:"guardianConsent"`
	ConsentCategories   []string `json:"consentCategories,omitempty"`
	EmergencyContact    string   `json:"emergencyContact,omitempty"`
	RestrictedActivities []string `json:"restrictedActivities,omitempty"`
	ApprovedTimeWindows []string `json:"approvedTimeWindows,omitempty"`
}

type AdaptationHistory struct {
	EffectiveAdaptations   []string `json:"effectiveAdaptations,omitempty"`
	IneffectiveAdaptations []string `json:"ineffectiveAdaptations,omitempty"`
	PreferredFeedbackStyle string   `json:"preferredFeedbackStyle,omitempty"`
	OptimalChallengeLevel  int      `json:"optimalChallengeLevel,omitempty"`
}

// DLSProfile is a user's daily-living-skills profile: who they are, where
// their skills stand, and how they learn best.
// swagger:model
type DLSProfile struct {
	UUIDBase
	UserID string `gorm:"type:varchar(36);uniqueIndex" json:"userId"`

	BasicInfo         BasicInfo              `gorm:"type:json;serializer:json" json:"basicInfo"`
	SkillDomains      map[string]SkillDomain `gorm:"type:json;serializer:json" json:"skillDomains"`
	CognitiveProfile  CognitiveProfile       `gorm:"type:json;serializer:json" json:"cognitiveProfile"`
	SensoryProfile    SensoryProfile         `gorm:"type:json;serializer:json" json:"sensoryProfile"`
	GuardianSettings  *GuardianSettings      `gorm:"type:json;serializer:json" json:"guardianSettings,omitempty"`
	AdaptationHistory AdaptationHistory      `gorm:"type:json;serializer:json" json:"adaptationHistory"`
}

// OverallSkillLevel is the mean of the domain levels, or 50 when the
// profile has no domains yet.
func (p *DLSProfile) OverallSkillLevel() float64 {
	if len(p.SkillDomains) == 0 {
		return 50
	}
	var sum float64
	for _, d := range p.SkillDomains {
		sum += float64(d.CurrentLevel)
	}
	return sum / float64(len(p.SkillDomains))
}

// SkillLevel returns the user's level for a specific skill by locating the
// domain the skill belongs to; unknown skills fall back to the overall level.
func (p *DLSProfile) SkillLevel(skillID string) float64 {
	if domain, ok := skillToDomain[skillID]; ok {
		if d, ok := p.SkillDomains[domain]; ok {
			return float64(d.CurrentLevel)
		}
	}
	return p.OverallSkillLevel()
}

// DomainSkills maps each skill domain to the concrete skill ids the catalog
// uses in quest skill requirements.
var DomainSkills = map[string][]string{
	DomainPersonalHealthCare:     {"personal_hygiene", "self_care", "health_management"},
	DomainTimeAndOrganization:    {"time_management", "organization", "planning", "scheduling"},
	DomainHomeAndDailyLiving:     {"cooking", "cleaning", "household_management", "maintenance"},
	DomainSocialSkills:           {"communication", "social_interaction", "relationship_building"},
	DomainCommunityParticipation: {"community_navigation", "public_transport", "shopping"},
	DomainWorkSkills:             {"task_completion", "professional_behavior", "workplace_communication"},
}

var skillToDomain = func() map[string]string {
	m := make(map[string]string)
	for domain, skills := range DomainSkills {
		for _, s := range skills {
			m[s] = domain
		}
	}
	return m
}()
