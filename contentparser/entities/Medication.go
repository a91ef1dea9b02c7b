package entities

// MedicationIdentity is the identity record of a medication in the medication database.
type MedicationIdentity struct {
	ID                MedicationID `json:"id" yaml:"id"`
	DisplayName       string       `json:"displayName" yaml:"displayName"`
	GenericName       string       `json:"genericName" yaml:"genericName"`
	BrandNames        []string     `json:"brandNames" yaml:"brandNames"`
	DrugClass         DrugClassID  `json:"drugClass" yaml:"drugClass"`
	RxNormCode        string       `json:"rxnormCode,omitempty" yaml:"rxnormCode"`
	Indications       []string     `json:"indications" yaml:"indications"`
	CommonSideEffects []string     `json:"commonSideEffects" yaml:"commonSideEffects"`
	Warnings          []Warning    `json:"warnings" yaml:"warnings"`
}

type Warning struct {
	Text     string `json:"text" yaml:"text"`
	BlackBox bool   `json:"blackBox" yaml:"blackBox"`
}

// DrugClassCategory groups drug classes by organ system.
type DrugClassCategory string

const (
	CategoryCardiovascular DrugClassCategory = "cardiovascular"
	CategoryEndocrine      DrugClassCategory = "endocrine"
	CategoryNeurologic     DrugClassCategory = "neurologic"
	CategoryRespiratory    DrugClassCategory = "respiratory"
	CategoryGastro         DrugClassCategory = "gi"
	CategoryInfectious     DrugClassCategory = "infectious"
	CategoryPsychiatric    DrugClassCategory = "psychiatric"
	CategoryHematologic    DrugClassCategory = "hematologic"
	CategoryAnalgesic      DrugClassCategory = "analgesic"
)

func (c DrugClassCategory) Known() bool {
	switch c {
	case CategoryCardiovascular, CategoryEndocrine, CategoryNeurologic, CategoryRespiratory, CategoryGastro,
		CategoryInfectious, CategoryPsychiatric, CategoryHematologic, CategoryAnalgesic:
		return true
	}
	return false
}

// DrugClass is a pharmacological grouping shared by several medications.
type DrugClass struct {
	ID            DrugClassID       `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	Category      DrugClassCategory `json:"category" yaml:"category"`
	Mechanism     string            `json:"mechanism" yaml:"mechanism"`
	PrototypeDrug MedicationID      `json:"prototypeDrug,omitempty" yaml:"prototypeDrug"`
}
