// Package main imports a case template authored as YAML into the document
// store. Intended for content authors working outside the admin API.
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okuznetsov/gumshoe/server/internal/domain/game"
	"github.com/okuznetsov/gumshoe/server/internal/platform/config"
	"github.com/okuznetsov/gumshoe/server/internal/platform/logger"
	"github.com/okuznetsov/gumshoe/server/internal/store"
)

// yamlSpecial mirrors game.SpecialLocation for YAML decoding.
type yamlSpecial struct {
	Text       string `yaml:"text"`
	Supplement string `yaml:"supplement"`
}

// yamlTemplate is the authoring format. It is decoded into the domain type
// rather than reusing it so the YAML surface can evolve independently of the
// stored JSON documents.
type yamlTemplate struct {
	ID        string `yaml:"id"`
	StartText string `yaml:"start_text"`
	Newspaper string `yaml:"newspaper"`

	People       map[string]string `yaml:"people"`
	GovPlaces    map[string]string `yaml:"gov_places"`
	PublicPlaces map[string]string `yaml:"public_places"`

	Police   yamlSpecial `yaml:"police"`
	Morgue   yamlSpecial `yaml:"morgue"`
	Registry yamlSpecial `yaml:"registry"`

	Places map[string]string `yaml:"places"`

	Culprit *struct {
		IDs     []string `yaml:"ids"`
		Name    string   `yaml:"name"`
		EndText string   `yaml:"end_text"`
	} `yaml:"culprit"`

	Tooltips map[int]string `yaml:"tooltips"`
}

func (y *yamlTemplate) toTemplate() *game.Template {
	t := game.NewTemplate(y.ID)
	t.StartText = y.StartText
	t.Newspaper = y.Newspaper
	for id, text := range y.People {
		t.People[id] = text
	}
	for id, text := range y.GovPlaces {
		t.GovPlaces[id] = text
	}
	for id, text := range y.PublicPlaces {
		t.PublicPlaces[id] = text
	}
	t.Police = game.SpecialLocation{Text: y.Police.Text, Supplement: y.Police.Supplement}
	t.Morgue = game.SpecialLocation{Text: y.Morgue.Text, Supplement: y.Morgue.Supplement}
	t.Registry = game.SpecialLocation{Text: y.Registry.Text, Supplement: y.Registry.Supplement}
	for id, text := range y.Places {
		t.Places[id] = text
	}
	if y.Culprit != nil {
		t.Culprit = &game.Culprit{
			IDs:     y.Culprit.IDs,
			Name:    y.Culprit.Name,
			EndText: y.Culprit.EndText,
		}
	}
	for move, target := range y.Tooltips {
		t.Tooltips[move] = target
	}
	return t
}

func main() {
	file := flag.String("file", "", "YAML template file to import")
	overwrite := flag.Bool("overwrite", false, "replace an existing template with the same id")
	flag.Parse()

	appLogger := logger.NewLogger()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: template-import -file case.yaml [-overwrite]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		appLogger.Error("Failed to load configuration: " + err.Error())
		os.Exit(1)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		appLogger.Error("Failed to read " + *file + ": " + err.Error())
		os.Exit(1)
	}

	var yt yamlTemplate
	if err := yaml.Unmarshal(raw, &yt); err != nil {
		appLogger.Error("Failed to parse YAML: " + err.Error())
		os.Exit(1)
	}
	if yt.ID == "" {
		appLogger.Error("Template file has no id")
		os.Exit(1)
	}

	templates, err := store.NewTemplateStore(cfg.TemplatesDir())
	if err != nil {
		appLogger.Error("Failed to open template store: " + err.Error())
		os.Exit(1)
	}

	if templates.Exists(yt.ID) && !*overwrite {
		appLogger.Error("Template " + yt.ID + " already exists (use -overwrite to replace)")
		os.Exit(1)
	}
	if templates.Exists(yt.ID) {
		if err := templates.Delete(yt.ID); err != nil {
			appLogger.Error("Failed to replace template: " + err.Error())
			os.Exit(1)
		}
	}

	if err := templates.Import(yt.toTemplate()); err != nil {
		appLogger.Error("Import failed: " + err.Error())
		os.Exit(1)
	}
	appLogger.Info("Imported template " + yt.ID + " into " + cfg.TemplatesDir())
}
