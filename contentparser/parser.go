// Package contentparser loads the pharmacology content files and builds the
// immutable store catalog from them. Content is embedded in the binary and
// can be overridden by a directory on disk.
package contentparser

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/giygas/pharmacology-api/contentparser/entities"
	"github.com/giygas/pharmacology-api/interfaces"
	"github.com/giygas/pharmacology-api/logging"
	"github.com/giygas/pharmacology-api/stores"
)

//go:embed files/*.yaml
var embedded embed.FS

const (
	MedicationsFile      = "medications.yaml"
	TargetsFile          = "targets.yaml"
	PharmacokineticsFile = "pharmacokinetics.yaml"
	InteractionsFile     = "interactions.yaml"
	SideEffectsFile      = "side_effects.yaml"
	MechanismsFile       = "mechanisms.yaml"
	CombinationsFile     = "combinations.yaml"

	// EmbeddedSource names the content compiled into the binary
	EmbeddedSource = "embedded"
)

// ErrMissingContent is returned when a required content file is absent
var ErrMissingContent = errors.New("required content file missing")

var _ interfaces.ContentParser = (*Parser)(nil)

type medicationsDoc struct {
	DrugClasses []entities.DrugClass          `yaml:"drugClasses"`
	Medications []entities.MedicationIdentity `yaml:"medications"`
}

type targetsDoc struct {
	Targets []entities.TargetMapping `yaml:"targets"`
}

type pharmacokineticsDoc struct {
	Pharmacokinetics []entities.PharmacokineticProfile `yaml:"pharmacokinetics"`
}

type interactionsDoc struct {
	Interactions []entities.InteractionRecord `yaml:"interactions"`
}

type sideEffectsDoc struct {
	SideEffects []entities.SideEffectExplanation `yaml:"sideEffects"`
}

type mechanismsDoc struct {
	Mechanisms []entities.MechanismExplanation `yaml:"mechanisms"`
}

type combinationsDoc struct {
	Combinations []entities.DrugCombination `yaml:"combinations"`
}

// Parser reads content files from a file system
type Parser struct {
	fsys   fs.FS
	source string
}

// NewParser reads content from fsys; source is reported in logs and health
func NewParser(fsys fs.FS, source string) *Parser {
	return &Parser{fsys: fsys, source: source}
}

// NewEmbeddedParser reads the content compiled into the binary
func NewEmbeddedParser() *Parser {
	sub, err := fs.Sub(embedded, "files")
	if err != nil {
		// The embed pattern guarantees the directory exists
		panic(fmt.Sprintf("embedded content: %v", err))
	}
	return NewParser(sub, EmbeddedSource)
}

// NewDirParser reads content from a directory on disk
func NewDirParser(dir string) *Parser {
	return NewParser(os.DirFS(dir), dir)
}

func (p *Parser) Source() string {
	return p.source
}

// Load decodes every content file and builds a new catalog.
// Medications and targets are required; the other files may be absent.
func (p *Parser) Load() (*stores.Catalog, error) {
	start := time.Now()

	var (
		meds    medicationsDoc
		targets targetsDoc
		pk      pharmacokineticsDoc
		inter   interactionsDoc
		effects sideEffectsDoc
		mechs   mechanismsDoc
		combos  combinationsDoc
		eg      errgroup.Group
	)

	eg.Go(func() error { return p.decode(MedicationsFile, true, &meds) })
	eg.Go(func() error { return p.decode(TargetsFile, true, &targets) })
	eg.Go(func() error { return p.decode(PharmacokineticsFile, false, &pk) })
	eg.Go(func() error { return p.decode(InteractionsFile, false, &inter) })
	eg.Go(func() error { return p.decode(SideEffectsFile, false, &effects) })
	eg.Go(func() error { return p.decode(MechanismsFile, false, &mechs) })
	eg.Go(func() error { return p.decode(CombinationsFile, false, &combos) })

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("loading content from %s: %w", p.source, err)
	}

	n := &normalizer{}
	n.medications(&meds)
	n.targets(targets.Targets)
	n.pharmacokinetics(pk.Pharmacokinetics)
	n.interactions(inter.Interactions)
	n.sideEffects(effects.SideEffects)
	n.mechanisms(mechs.Mechanisms)
	n.combinations(combos.Combinations)
	if err := n.err(); err != nil {
		return nil, fmt.Errorf("invalid content in %s: %w", p.source, err)
	}

	catalog, err := build(meds, targets, pk, inter, effects, mechs, combos)
	if err != nil {
		return nil, fmt.Errorf("invalid content in %s: %w", p.source, err)
	}

	logging.Info("Content loaded",
		"source", p.source,
		"medications", len(meds.Medications),
		"drug_classes", len(meds.DrugClasses),
		"target_mappings", len(targets.Targets),
		"pharmacokinetics", len(pk.Pharmacokinetics),
		"interactions", len(inter.Interactions),
		"side_effects", len(effects.SideEffects),
		"mechanisms", len(mechs.Mechanisms),
		"combinations", len(combos.Combinations),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return catalog, nil
}

// decode reads one YAML file into out, rejecting unknown fields
func (p *Parser) decode(name string, required bool, out any) error {
	data, err := fs.ReadFile(p.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if required {
				return fmt.Errorf("%s: %w", name, ErrMissingContent)
			}
			logging.Warn("Optional content file missing", "file", name, "source", p.source)
			return nil
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		// An empty file decodes to io.EOF and means no records
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

func build(meds medicationsDoc, targets targetsDoc, pk pharmacokineticsDoc,
	inter interactionsDoc, effects sideEffectsDoc, mechs mechanismsDoc, combos combinationsDoc) (*stores.Catalog, error) {
	medDB, err := stores.NewMedicationDatabase(meds.DrugClasses, meds.Medications)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MedicationsFile, err)
	}
	targetMap, err := stores.NewTargetMap(targets.Targets)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", TargetsFile, err)
	}
	pkStore, err := stores.NewPharmacokinetics(pk.Pharmacokinetics)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", PharmacokineticsFile, err)
	}
	interStore, err := stores.NewInteractions(inter.Interactions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", InteractionsFile, err)
	}
	effectStore, err := stores.NewSideEffects(effects.SideEffects)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SideEffectsFile, err)
	}
	mechStore, err := stores.NewMechanisms(mechs.Mechanisms)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MechanismsFile, err)
	}

	comboStore, err := stores.NewCombinations(combos.Combinations)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", CombinationsFile, err)
	}

	return stores.NewCatalog(targetMap, medDB, pkStore, interStore, effectStore, mechStore, comboStore), nil
}
