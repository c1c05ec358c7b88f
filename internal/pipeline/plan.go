package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/trawlhq/trawl/internal/model"
)

// Phase is one step of the plan: how many not-yet-attempted candidates to
// take, how long each fetch and the whole batch may run, and the deepest
// tier the batch may reach.
type Phase struct {
	Name             string     `yaml:"name"`
	Take             int        `yaml:"take"`
	SiteTimeoutSecs  int        `yaml:"site_timeout_secs"`
	BatchTimeoutSecs int        `yaml:"batch_timeout_secs"`
	Ceiling          model.Tier `yaml:"ceiling"`
}

// SiteTimeout is the per-fetch budget as a duration.
func (p Phase) SiteTimeout() time.Duration {
	return time.Duration(p.SiteTimeoutSecs) * time.Second
}

// BatchTimeout is the whole-batch budget as a duration.
func (p Phase) BatchTimeout() time.Duration {
	return time.Duration(p.BatchTimeoutSecs) * time.Second
}

// Plan is the ordered list of phases a session walks through.
type Plan struct {
	Phases []Phase
}

// Capacity is the total number of candidates the plan can attempt.
func (p Plan) Capacity() int {
	total := 0
	for _, ph := range p.Phases {
		total += ph.Take
	}
	return total
}

// NeedsRender reports whether any phase allows the rendered tier, i.e.
// whether running this plan can ever need a browser.
func (p Plan) NeedsRender() bool {
	for _, ph := range p.Phases {
		if ph.Ceiling == model.TierRendered {
			return true
		}
	}
	return false
}

// DefaultPlan widens budgets phase by phase: a quick sweep over the cheap
// tiers first, a second slightly wider pass, then a last pass where
// rendering is allowed.
func DefaultPlan() Plan {
	return Plan{Phases: []Phase{
		{Name: "sweep", Take: 8, SiteTimeoutSecs: 10, BatchTimeoutSecs: 15, Ceiling: model.TierExtracted},
		{Name: "second-pass", Take: 5, SiteTimeoutSecs: 8, BatchTimeoutSecs: 12, Ceiling: model.TierExtracted},
		{Name: "render", Take: 5, SiteTimeoutSecs: 15, BatchTimeoutSecs: 20, Ceiling: model.TierRendered},
	}}
}

// LoadPlan reads a phase plan from a YAML file. Omitted per-phase fields
// fall back to defaults; an unknown ceiling is an error.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, eris.Wrapf(err, "pipeline: read plan %s", path)
	}

	// The YAML has a top-level "plan" key.
	var wrapper struct {
		Plan []Phase `yaml:"plan"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Plan{}, eris.Wrap(err, "pipeline: parse plan")
	}
	if len(wrapper.Plan) == 0 {
		return Plan{}, eris.Errorf("pipeline: plan %s has no phases", path)
	}

	for i, ph := range wrapper.Plan {
		if ph.Name == "" {
			ph.Name = fmt.Sprintf("phase-%d", i+1)
		}
		if ph.Take <= 0 {
			ph.Take = 5
		}
		if ph.SiteTimeoutSecs <= 0 {
			ph.SiteTimeoutSecs = 10
		}
		if ph.BatchTimeoutSecs <= 0 {
			ph.BatchTimeoutSecs = 15
		}
		switch ph.Ceiling {
		case "":
			ph.Ceiling = model.TierExtracted
		case model.TierDirect, model.TierExtracted, model.TierRendered:
		default:
			return Plan{}, eris.Errorf("pipeline: phase %q: unknown ceiling %q", ph.Name, ph.Ceiling)
		}
		wrapper.Plan[i] = ph
	}

	return Plan{Phases: wrapper.Plan}, nil
}
