// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content manages the portfolio content document, a JSON file
// edited in place through the admin panel. Reads and writes go through
// one mutex; updates deep-merge into the current document except for
// the skills and what_im_doing sections, which are replaced wholesale.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// MaxSkillSections caps the number of skill sections the admin panel
// may configure.
const MaxSkillSections = 10

var (
	// ErrNotFound means neither the content file nor a sample to
	// bootstrap from exists.
	ErrNotFound = errors.New("content file not found")

	// ErrSectionNotFound means the requested top-level section is
	// absent from the document.
	ErrSectionNotFound = errors.New("content section not found")
)

// Store is the file-backed content document.
type Store struct {
	path       string
	samplePath string
	mu         sync.RWMutex
}

// NewStore creates a Store over the given content file. samplePath may
// be empty; when set, a missing content file is bootstrapped from it on
// first read.
func NewStore(path, samplePath string) *Store {
	return &Store{path: path, samplePath: samplePath}
}

// Read returns the full content document, bootstrapping from the sample
// file when the content file does not exist yet.
func (s *Store) Read() (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read()
}

func (s *Store) read() (map[string]any, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := s.bootstrap(); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading content file: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing content file: %w", err)
	}
	return doc, nil
}

func (s *Store) bootstrap() error {
	if s.samplePath == "" {
		return ErrNotFound
	}
	sample, err := os.ReadFile(s.samplePath)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("reading sample content: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating content directory: %w", err)
	}
	return s.writeFile(sample)
}

// Section returns one top-level section of the document.
func (s *Store) Section(name string) (any, error) {
	doc, err := s.Read()
	if err != nil {
		return nil, err
	}
	section, ok := doc[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, name)
	}
	return section, nil
}

// Update applies updates to the document and returns the merged result.
// The skills and what_im_doing sections are replaced entirely (skills
// validated first); every other section is deep-merged.
func (s *Store) Update(updates map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	if skills, ok := updates["skills"]; ok {
		skillsMap, ok := skills.(map[string]any)
		if !ok {
			return nil, errors.New("skills update must be an object")
		}
		if err := ValidateSkills(skillsMap); err != nil {
			return nil, err
		}
		doc["skills"] = skillsMap
	}
	if doing, ok := updates["what_im_doing"]; ok {
		doc["what_im_doing"] = doing
	}

	for section, val := range updates {
		if section == "skills" || section == "what_im_doing" {
			continue
		}
		existing, ok := doc[section].(map[string]any)
		update, isMap := val.(map[string]any)
		if ok && isMap {
			deepMerge(existing, update)
		} else {
			doc[section] = val
		}
	}

	if err := s.write(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Skills returns the skills section, defaulting to an empty sections
// map when none is configured.
func (s *Store) Skills() (map[string]any, error) {
	doc, err := s.Read()
	if err != nil {
		return nil, err
	}
	if skills, ok := doc["skills"].(map[string]any); ok {
		return skills, nil
	}
	return map[string]any{"sections": map[string]any{}}, nil
}

// UpdateSkills validates and replaces the skills section.
func (s *Store) UpdateSkills(skills map[string]any) (map[string]any, error) {
	if err := ValidateSkills(skills); err != nil {
		return nil, err
	}
	return s.Update(map[string]any{"skills": skills})
}

// DeleteSkillSection removes one skill section and renumbers the rest
// so keys stay sequential (section_1, section_2, ...). Deleting an
// unknown section is a no-op.
func (s *Store) DeleteSkillSection(sectionID string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	skills, ok := doc["skills"].(map[string]any)
	if !ok {
		return doc, nil
	}
	sections, ok := skills["sections"].(map[string]any)
	if !ok {
		return doc, nil
	}
	if _, exists := sections[sectionID]; !exists {
		return doc, nil
	}
	delete(sections, sectionID)

	renumbered := make(map[string]any, len(sections))
	i := 0
	for _, key := range sortedSectionKeys(sections) {
		i++
		renumbered[fmt.Sprintf("section_%d", i)] = sections[key]
	}
	skills["sections"] = renumbered

	if err := s.write(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ValidateSkills checks the structural contract of a skills section:
// a sections map of at most MaxSkillSections entries, each section
// carrying a title and a skills array whose entries have a title and a
// .webp image path.
func ValidateSkills(skills map[string]any) error {
	rawSections, ok := skills["sections"]
	if !ok {
		return errors.New("skills data must contain sections")
	}
	sections, ok := rawSections.(map[string]any)
	if !ok {
		return errors.New("skills sections must be an object")
	}
	if len(sections) > MaxSkillSections {
		return fmt.Errorf("maximum number of skill sections (%d) exceeded", MaxSkillSections)
	}

	for sectionID, raw := range sections {
		section, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("section %s must be an object", sectionID)
		}
		if _, ok := section["title"]; !ok {
			return fmt.Errorf("section %s missing title", sectionID)
		}
		rawSkills, ok := section["skills"]
		if !ok {
			return fmt.Errorf("section %s missing skills array", sectionID)
		}
		items, ok := rawSkills.([]any)
		if !ok {
			return fmt.Errorf("section %s skills must be an array", sectionID)
		}
		for _, rawSkill := range items {
			skill, ok := rawSkill.(map[string]any)
			if !ok {
				return fmt.Errorf("section %s contains a non-object skill", sectionID)
			}
			title, _ := skill["title"].(string)
			if title == "" {
				return errors.New("skill missing title")
			}
			image, _ := skill["image"].(string)
			if image == "" {
				return fmt.Errorf("skill %s missing image", title)
			}
			if filepath.Ext(image) != ".webp" {
				return fmt.Errorf("skill %s image must be in webp format", title)
			}
		}
	}
	return nil
}

func (s *Store) write(doc map[string]any) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding content: %w", err)
	}
	return s.writeFile(data)
}

// writeFile writes atomically via a temp file so a crash mid-write
// never leaves a truncated document.
func (s *Store) writeFile(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating content directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing content file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing content file: %w", err)
	}
	return nil
}

// deepMerge merges u into d in place. Matching nested objects merge
// recursively; everything else is overwritten.
func deepMerge(d, u map[string]any) {
	for k, v := range u {
		if vm, ok := v.(map[string]any); ok {
			if dm, ok := d[k].(map[string]any); ok {
				deepMerge(dm, vm)
				continue
			}
		}
		d[k] = v
	}
}

// sortedSectionKeys orders section keys by their numeric suffix, so
// section_10 comes after section_9, not between section_1 and
// section_2. Keys without a numeric suffix sort lexically after the
// numbered ones.
func sortedSectionKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, iok := sectionNumber(keys[i])
		nj, jok := sectionNumber(keys[j])
		switch {
		case iok && jok:
			return ni < nj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func sectionNumber(key string) (int, bool) {
	suffix, ok := strings.CutPrefix(key, "section_")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return n, true
}
