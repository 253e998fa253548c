package orchestrator

// Runs the Gherkin features under features/ (spec §8 Testable
// Properties) via godog, grounded on the pack's epubverify
// test/godog/epubcheck_test.go harness. Lives in this package (not
// orchestrator_test) because the language_preference steps exercise the
// unexported candidate/sortCandidates directly, the same way spec §8.2's
// ordering law is unit-tested in orchestrator_test.go.

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/periodiq/periodiq/internal/models"
	"github.com/periodiq/periodiq/internal/normalize"
	"github.com/periodiq/periodiq/internal/providers"
)

type featureState struct {
	hitGroupKeys map[string]string
	lastTwoHits  []string

	submission *models.Submission

	candidates []candidate

	cleaned string
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeFeatureScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features"},
			Tags:     "~@pending",
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned from godog test suite")
	}
}

func initializeFeatureScenario(ctx *godog.ScenarioContext) {
	s := &featureState{hitGroupKeys: map[string]string{}}

	ctx.Before(func(c interface{}, sc *godog.Scenario) (interface{}, error) {
		s.hitGroupKeys = map[string]string{}
		s.lastTwoHits = nil
		s.submission = nil
		s.candidates = nil
		s.cleaned = ""
		return c, nil
	})

	ctx.Step(`^a search hit titled "([^"]*)"$`, func(title string) error {
		s.hitGroupKeys[title] = normalize.GroupKey(title)
		s.lastTwoHits = append(s.lastTwoHits, title)
		return nil
	})

	ctx.Step(`^their group keys are equal$`, func() error {
		if len(s.lastTwoHits) < 2 {
			return fmt.Errorf("need at least two search hits, got %d", len(s.lastTwoHits))
		}
		a := s.lastTwoHits[len(s.lastTwoHits)-2]
		b := s.lastTwoHits[len(s.lastTwoHits)-1]
		ka, kb := s.hitGroupKeys[a], s.hitGroupKeys[b]
		if ka != kb {
			return fmt.Errorf("group key(%q)=%q != group key(%q)=%q", a, ka, b, kb)
		}
		return nil
	})

	ctx.Step(`^a submission with state "([^"]*)" and attempt count (\d+)$`, func(state string, attempts int) error {
		s.submission = &models.Submission{
			State:        models.SubmissionState(strings.ToLower(state)),
			AttemptCount: attempts,
		}
		return nil
	})

	ctx.Step(`^the same submission now has attempt count (\d+)$`, func(attempts int) error {
		if s.submission == nil {
			return fmt.Errorf("no submission in scenario state")
		}
		s.submission.AttemptCount = attempts
		return nil
	})

	ctx.Step(`^it is classified as a bad file$`, func() error {
		if s.submission == nil {
			return fmt.Errorf("no submission in scenario state")
		}
		if !s.submission.IsBadFile() {
			return fmt.Errorf("expected submission (state=%s, attempts=%d) to be a bad file", s.submission.State, s.submission.AttemptCount)
		}
		return nil
	})

	ctx.Step(`^it is not classified as a bad file$`, func() error {
		if s.submission == nil {
			return fmt.Errorf("no submission in scenario state")
		}
		if s.submission.IsBadFile() {
			return fmt.Errorf("expected submission (state=%s, attempts=%d) not to be a bad file", s.submission.State, s.submission.AttemptCount)
		}
		return nil
	})

	ctx.Step(`^a candidate titled "([^"]*)" in language "([^"]*)" published "([^"]*)"$`, func(title, language, published string) error {
		c := candidate{
			hit:      providers.SearchHit{Title: title, ProviderName: "test"},
			language: language,
			groupKey: normalize.GroupKey(title),
		}
		if published != "" {
			parsed, err := time.Parse("2006-01-02", published)
			if err != nil {
				return fmt.Errorf("parse publication date %q: %w", published, err)
			}
			c.hit.PublicationDate = &parsed
		}
		s.candidates = append(s.candidates, c)
		return nil
	})

	ctx.Step(`^the candidates are sorted for batch ordering$`, func() error {
		sortCandidates(s.candidates)
		return nil
	})

	ctx.Step(`^"([^"]*)" precedes "([^"]*)"$`, func(first, second string) error {
		firstIdx, secondIdx := -1, -1
		for i, c := range s.candidates {
			if c.hit.Title == first {
				firstIdx = i
			}
			if c.hit.Title == second {
				secondIdx = i
			}
		}
		if firstIdx == -1 || secondIdx == -1 {
			return fmt.Errorf("could not find both %q and %q among sorted candidates", first, second)
		}
		if firstIdx >= secondIdx {
			return fmt.Errorf("expected %q (index %d) to precede %q (index %d)", first, firstIdx, second, secondIdx)
		}
		return nil
	})

	ctx.Step(`^I clean the title "([^"]*)"$`, func(raw string) error {
		s.cleaned = normalize.Clean(raw)
		return nil
	})

	ctx.Step(`^cleaning the result again produces the same title$`, func() error {
		if normalize.Clean(s.cleaned) != s.cleaned {
			return fmt.Errorf("Clean(%q) = %q, not idempotent", s.cleaned, normalize.Clean(s.cleaned))
		}
		return nil
	})
}
