package stores

import (
	"fmt"
	"slices"

	"github.com/giygas/pharmacology-api/contentparser/entities"
)

// MedicationDatabase holds medication identities and their drug classes
type MedicationDatabase struct {
	medications []entities.MedicationIdentity
	byID        map[entities.MedicationID]int
	classes     []entities.DrugClass
	classByID   map[entities.DrugClassID]int
}

// MedicationQuery filters medication searches. Empty fields match everything.
type MedicationQuery struct {
	DrugClass entities.DrugClassID
	Text      string
}

// ClassQuery filters drug class searches. Empty fields match everything.
type ClassQuery struct {
	Category entities.DrugClassCategory
	Text     string
}

// MedicationStats counts medications per drug class
type MedicationStats struct {
	Medications int                          `json:"medications"`
	Classes     int                          `json:"classes"`
	ByClass     map[entities.DrugClassID]int `json:"byClass"`
}

func NewMedicationDatabase(classes []entities.DrugClass, medications []entities.MedicationIdentity) (*MedicationDatabase, error) {
	db := &MedicationDatabase{
		medications: entities.CloneEach(medications),
		byID:        make(map[entities.MedicationID]int, len(medications)),
		classes:     slices.Clone(classes),
		classByID:   make(map[entities.DrugClassID]int, len(classes)),
	}

	for i, class := range db.classes {
		if class.ID == "" {
			return nil, fmt.Errorf("drug class %d: missing id", i)
		}
		if _, dup := db.classByID[class.ID]; dup {
			return nil, fmt.Errorf("drug class %q: duplicate id", class.ID)
		}
		db.classByID[class.ID] = i
	}

	for i, med := range db.medications {
		if med.ID == "" {
			return nil, fmt.Errorf("medication %d: missing id", i)
		}
		if _, dup := db.byID[med.ID]; dup {
			return nil, fmt.Errorf("medication %q: duplicate id", med.ID)
		}
		db.byID[med.ID] = i
	}

	return db, nil
}

func (db *MedicationDatabase) GetByID(id entities.MedicationID) (entities.MedicationIdentity, bool) {
	i, ok := db.byID[id]
	if !ok {
		return entities.MedicationIdentity{}, false
	}
	return db.medications[i].Clone(), true
}

func (db *MedicationDatabase) GetClass(id entities.DrugClassID) (entities.DrugClass, bool) {
	i, ok := db.classByID[id]
	if !ok {
		return entities.DrugClass{}, false
	}
	return db.classes[i], true
}

func (db *MedicationDatabase) Classes() []entities.DrugClass {
	return slices.Clone(db.classes)
}

// SearchClasses matches the query text against class ids, names, mechanisms
// and prototype drugs
func (db *MedicationDatabase) SearchClasses(q ClassQuery) []entities.DrugClass {
	text := newTextMatcher(q.Text)

	var out []entities.DrugClass
	for _, class := range db.classes {
		if q.Category != "" && class.Category != q.Category {
			continue
		}
		if !text.match(string(class.ID), class.Name, class.Mechanism, string(class.PrototypeDrug), string(class.Category)) {
			continue
		}
		out = append(out, class)
	}
	return out
}

func (db *MedicationDatabase) All() []entities.MedicationIdentity {
	return entities.CloneEach(db.medications)
}

func (db *MedicationDatabase) Len() int {
	return len(db.medications)
}

// Search matches the query text against ids, display, generic and brand names
func (db *MedicationDatabase) Search(q MedicationQuery) []entities.MedicationIdentity {
	text := newTextMatcher(q.Text)

	var out []entities.MedicationIdentity
	for _, med := range db.medications {
		if q.DrugClass != "" && med.DrugClass != q.DrugClass {
			continue
		}
		if !text.empty() && !text.match(string(med.ID), med.DisplayName, med.GenericName) && !text.matchAny(med.BrandNames) {
			continue
		}
		out = append(out, med.Clone())
	}
	return out
}

func (db *MedicationDatabase) StatsSummary() MedicationStats {
	stats := MedicationStats{
		Medications: len(db.medications),
		Classes:     len(db.classes),
		ByClass:     make(map[entities.DrugClassID]int),
	}
	for _, med := range db.medications {
		stats.ByClass[med.DrugClass]++
	}
	return stats
}
