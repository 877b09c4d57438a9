package main

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Policy decides what happens to a document that fails validation.
type Policy string

const (
	SkipInvalid    Policy = "skip_invalid"
	AbortOnInvalid Policy = "abort_on_invalid"
)

const (
	engineBlackfriday = "blackfriday"
	engineGoldmark    = "goldmark"
)

type SiteConf struct {
	SiteTitle         string `mapstructure:"siteTitle"`
	BaseUrl           string `mapstructure:"baseUrl"`
	Author, AuthorUri string

	// Optional. Files found here replace the embedded templates of the same name.
	TemplateDir string `mapstructure:"templateDir"`

	Collections []*CollectionConf `mapstructure:"collections"`
}

// CollectionConf describes one set of posts: where its sources live, where
// pages, images and the listing go, and how strictly it is validated.
type CollectionConf struct {
	Name     string `mapstructure:"name"`
	ItemName string `mapstructure:"itemName"`
	Label    string `mapstructure:"label"`

	SourceDir     string `mapstructure:"sourceDir"`
	FileExtension string `mapstructure:"fileExtension"`
	OutDir        string `mapstructure:"outDir"`
	AssetDir      string `mapstructure:"assetDir"`
	ListingPath   string `mapstructure:"listingPath"`
	StaticDir     string `mapstructure:"staticDir"`
	FeedPath      string `mapstructure:"feedPath"`

	// URL prefix of copied images as seen from a generated page.
	ImageBaseUrl string `mapstructure:"imageBaseUrl"`

	TagField     string   `mapstructure:"tagField"`
	AllowedTags  []string `mapstructure:"allowedTags"`
	AllTagsLabel string   `mapstructure:"allTagsLabel"`
	Policy       Policy   `mapstructure:"policy"`

	MarkdownEngine string `mapstructure:"markdownEngine"`

	ListId      string `mapstructure:"listId"`
	TagFilterId string `mapstructure:"tagFilterId"`
}

func (c *CollectionConf) multiTag() bool { return c.TagField == "tags" }

var defaultAllowedTags = []string{
	"Ashborne",
	"FSE",
	"VEX",
	"Technical Deep Dive",
	"High-level Design",
	"Algorithms & Problem Solving",
	"Reflection",
	"Simulation & Modeling",
	"General / Project Updates",
}

func defaultSiteConf() *SiteConf {
	return &SiteConf{
		SiteTitle: "halfcomplete",
		BaseUrl:   "https://halfcomplete.dev/",
		Author:    "halfcomplete",
		Collections: []*CollectionConf{
			{
				Name:        "devlogs",
				SourceDir:   "docs/assets/devlogs",
				OutDir:      "docs/devlogs",
				AssetDir:    "docs/assets/devlogs",
				ListingPath: "docs/devlogs.html",
				TagField:    "tag",
				Policy:      AbortOnInvalid,
			},
			{
				Name:        "devblogs",
				SourceDir:   "docs/assets/devblogs",
				OutDir:      "docs/devblogs",
				AssetDir:    "docs/assets/devblogs",
				ListingPath: "docs/devblogs.html",
				TagField:    "tags",
				AllowedTags: defaultAllowedTags,
				Policy:      SkipInvalid,
			},
		},
	}
}

// readConf loads the site configuration. With an empty fileName it looks for
// sitebuild.* in the working directory and falls back to the built-in
// collections when there is none.
func readConf(fileName string) (*SiteConf, error) {
	v := viper.New()
	v.SetEnvPrefix("SITEBUILD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if fileName != "" {
		v.SetConfigFile(fileName)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("sitebuild")
	}

	baseDir := "."
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if fileName != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Println("No sitebuild config found, using the built-in collections.")
		conf := defaultSiteConf()
		return conf, conf.finalize(baseDir)
	}
	baseDir = filepath.Dir(v.ConfigFileUsed())
	log.Println("Using config file:", v.ConfigFileUsed())

	conf := defaultSiteConf()
	conf.Collections = nil
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if len(conf.Collections) == 0 {
		conf.Collections = defaultSiteConf().Collections
	}

	return conf, conf.finalize(baseDir)
}

// finalize fills in derived defaults, normalises paths against baseDir and
// validates every collection.
func (s *SiteConf) finalize(baseDir string) error {
	if s.Author == "" {
		s.Author = s.SiteTitle
	}
	if s.TemplateDir != "" {
		s.TemplateDir = normalizePath(s.TemplateDir, baseDir)
	}

	seen := make(map[string]bool, len(s.Collections))
	for _, c := range s.Collections {
		if err := c.finalize(baseDir); err != nil {
			return err
		}
		if seen[c.Name] {
			return fmt.Errorf("collection %q is configured twice", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

func (c *CollectionConf) finalize(baseDir string) error {
	if c.ItemName == "" {
		c.ItemName = strings.TrimSuffix(c.Name, "s")
	}
	if c.Label == "" {
		c.Label = cases.Title(language.English).String(c.Name)
	}
	if c.FileExtension == "" {
		c.FileExtension = ".md"
	}
	if c.TagField == "" {
		c.TagField = "tags"
	}
	if c.AllTagsLabel == "" {
		c.AllTagsLabel = "All Tags"
	}
	if c.MarkdownEngine == "" {
		c.MarkdownEngine = engineBlackfriday
	}
	if c.ListId == "" {
		c.ListId = c.ItemName + "-list"
	}
	if c.TagFilterId == "" {
		c.TagFilterId = "tag-filter"
	}

	err := validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.SourceDir, validation.Required),
		validation.Field(&c.OutDir, validation.Required),
		validation.Field(&c.AssetDir, validation.Required),
		validation.Field(&c.ListingPath, validation.Required),
		validation.Field(&c.Policy, validation.Required, validation.In(SkipInvalid, AbortOnInvalid)),
		validation.Field(&c.TagField, validation.In("tag", "tags")),
		validation.Field(&c.MarkdownEngine, validation.In(engineBlackfriday, engineGoldmark)),
	)
	if err != nil {
		return fmt.Errorf("collection %q: %w", c.Name, err)
	}

	c.SourceDir = normalizePath(c.SourceDir, baseDir)
	c.OutDir = normalizePath(c.OutDir, baseDir)
	c.AssetDir = normalizePath(c.AssetDir, baseDir)
	c.ListingPath = normalizePath(c.ListingPath, baseDir)
	if c.StaticDir != "" {
		c.StaticDir = normalizePath(c.StaticDir, baseDir)
	}
	if c.FeedPath != "" {
		c.FeedPath = normalizePath(c.FeedPath, baseDir)
	}

	if c.ImageBaseUrl == "" {
		rel, err := filepath.Rel(c.OutDir, c.AssetDir)
		if err != nil {
			return fmt.Errorf("collection %q: image base url: %w", c.Name, err)
		}
		c.ImageBaseUrl = filepath.ToSlash(rel)
	}
	c.ImageBaseUrl = strings.TrimSuffix(c.ImageBaseUrl, "/")

	return nil
}

func normalizePath(path, baseDir string) string {
	if !filepath.IsAbs(path) {
		return filepath.Join(baseDir, path)
	}
	return path
}

// selectCollections returns the collections named in names, or all of them.
func (s *SiteConf) selectCollections(names []string) ([]*CollectionConf, error) {
	if len(names) == 0 {
		return s.Collections, nil
	}

	selected := make([]*CollectionConf, 0, len(names))
	for _, name := range names {
		var found *CollectionConf
		for _, c := range s.Collections {
			if c.Name == name {
				found = c
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("unknown collection %q", name)
		}
		selected = append(selected, found)
	}
	return selected, nil
}
