// Package parser turns raw FAQ text into structured documents.
//
// The format is line oriented: the first non-empty line of a section is
// the subject, any line ending in '?' starts a new question, and
// consecutive non-question lines form the answer to the question above
// them. A line containing only "---" separates sections; each section
// becomes its own document.
package parser

import (
	"fmt"
	"strings"

	"marsfaq/internal/domain"
)

// SectionSeparator splits a file into independently parsed sections.
const SectionSeparator = "---"

// Warning flags a recoverable oddity in the input: an unanswered
// question, an answer line with no question above it, or a section with
// no questions at all. Warnings never abort parsing.
type Warning struct {
	Source  string
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.Source, w.Line, w.Message)
}

// parser states for the line classifier.
const (
	stateExpectQuestion = iota
	stateAccumAnswer
)

// Parse splits text into sections and parses each into a Document.
// Document IDs are "<source>#<section index>", so identical input always
// yields identical IDs. Sections with no content are dropped.
func Parse(source, text string) ([]domain.Document, []Warning) {
	var docs []domain.Document
	var warnings []Warning

	sectionIdx := 0
	for _, lines := range splitSections(text) {
		doc, w := parseSection(source, sectionIdx, lines)
		warnings = append(warnings, w...)
		if doc != nil {
			docs = append(docs, *doc)
			sectionIdx++
		}
	}
	return docs, warnings
}

type numberedLine struct {
	num  int
	text string
}

func splitSections(text string) [][]numberedLine {
	var sections [][]numberedLine
	var current []numberedLine
	lineNum := 0
	for _, line := range strings.Split(text, "\n") {
		lineNum++
		trimmed := strings.TrimSpace(line)
		if trimmed == SectionSeparator {
			sections = append(sections, current)
			current = nil
			continue
		}
		if trimmed == "" {
			continue
		}
		current = append(current, numberedLine{num: lineNum, text: trimmed})
	}
	return append(sections, current)
}

// parseSection runs the two-state line classifier over one section.
// Returns nil for a section with no non-empty lines.
func parseSection(source string, sectionIdx int, lines []numberedLine) (*domain.Document, []Warning) {
	if len(lines) == 0 {
		return nil, nil
	}

	doc := &domain.Document{
		ID:      fmt.Sprintf("%s#%d", source, sectionIdx),
		Subject: lines[0].text,
		Source:  source,
	}

	var warnings []Warning
	state := stateExpectQuestion
	var question string
	var answerParts []string
	questionLine := 0

	flush := func() {
		if question == "" {
			return
		}
		answer := strings.Join(answerParts, " ")
		if answer == "" {
			warnings = append(warnings, Warning{
				Source:  source,
				Line:    questionLine,
				Message: fmt.Sprintf("question %q has no answer", question),
			})
		}
		doc.Pairs = append(doc.Pairs, domain.QAPair{Question: question, Answer: answer})
		question = ""
		answerParts = nil
	}

	for _, line := range lines[1:] {
		if strings.HasSuffix(line.text, "?") {
			flush()
			question = line.text
			questionLine = line.num
			state = stateAccumAnswer
			continue
		}
		if state == stateExpectQuestion {
			warnings = append(warnings, Warning{
				Source:  source,
				Line:    line.num,
				Message: fmt.Sprintf("line %q is not a question and has no question above it", line.text),
			})
			continue
		}
		answerParts = append(answerParts, line.text)
	}
	flush()

	if len(doc.Pairs) == 0 {
		warnings = append(warnings, Warning{
			Source:  source,
			Line:    lines[0].num,
			Message: fmt.Sprintf("section %q contains no questions", doc.Subject),
		})
	}
	return doc, warnings
}
