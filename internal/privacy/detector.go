package privacy

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/raaihank/scandidate/internal/config"
	"go.uber.org/zap"
)

// ErrInputTooLarge is returned when a text exceeds the configured redaction limit
var ErrInputTooLarge = errors.New("input too large to redact")

// Detector handles sensitive-data detection and masking
type Detector struct {
	rules    []DetectionRule
	enabled  map[string]bool
	maxInput int
	logger   *zap.Logger
	mu       sync.RWMutex
}

// New creates a new detector instance
func New(cfg config.PrivacyConfig, log *zap.Logger) (*Detector, error) {
	detector := &Detector{
		rules:    DefaultRules(),
		enabled:  make(map[string]bool),
		maxInput: cfg.MaxInputBytes,
		logger:   log,
	}

	if err := detector.Configure(cfg.Detectors); err != nil {
		return nil, fmt.Errorf("failed to configure detectors: %w", err)
	}

	log.Info("Privacy detector initialized",
		zap.Int("total_rules", len(detector.rules)),
		zap.Int("enabled_rules", len(detector.EnabledRules())),
		zap.Int("max_input_bytes", detector.maxInput),
	)

	return detector, nil
}

// Configure replaces the enabled rule set. "all" enables every rule.
// On error the previous configuration is kept.
func (d *Detector) Configure(detectors []string) error {
	enabled := make(map[string]bool, len(d.rules))
	for _, rule := range d.rules {
		enabled[rule.Name] = false
	}

	for _, detector := range detectors {
		if detector == "all" {
			for _, rule := range d.rules {
				enabled[rule.Name] = true
			}
			continue
		}

		if _, ok := enabled[detector]; !ok {
			return fmt.Errorf("unknown detector: %s", detector)
		}
		enabled[detector] = true
	}

	d.mu.Lock()
	d.enabled = enabled
	d.mu.Unlock()
	return nil
}

// Redact masks every enabled rule's matches in registry order and reports
// how many occurrences each rule replaced. Each rule runs against the text
// as already masked by the rules before it.
func (d *Detector) Redact(text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{MaskedText: "", Report: Report{}}, nil
	}

	if d.maxInput > 0 && len(text) > d.maxInput {
		return Result{}, fmt.Errorf("%w: %d bytes (limit %d)", ErrInputTooLarge, len(text), d.maxInput)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	masked := text
	report := make(Report, 0)

	for _, rule := range d.rules {
		if !d.enabled[rule.Name] {
			continue
		}

		matches := rule.Pattern.FindAllStringIndex(masked, -1)
		if len(matches) == 0 {
			continue
		}

		report = append(report, Finding{
			EntityType: rule.Name,
			Masked:     rule.Replacement,
			Count:      len(matches),
		})
		masked = rule.Pattern.ReplaceAllLiteralString(masked, rule.Replacement)

		d.logger.Debug("Sensitive data detected and masked",
			zap.String("entity_type", rule.Name),
			zap.Int("count", len(matches)),
		)
	}

	return Result{MaskedText: masked, Report: report}, nil
}

// EnabledRules returns the enabled rule names in registry order
func (d *Detector) EnabledRules() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var names []string
	for _, rule := range d.rules {
		if d.enabled[rule.Name] {
			names = append(names, rule.Name)
		}
	}
	return names
}

// EnableRule enables a specific detection rule
func (d *Detector) EnableRule(ruleName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.enabled[ruleName]; !exists {
		return fmt.Errorf("unknown rule: %s", ruleName)
	}
	d.enabled[ruleName] = true
	d.logger.Info("Detection rule enabled", zap.String("rule", ruleName))
	return nil
}

// DisableRule disables a specific detection rule
func (d *Detector) DisableRule(ruleName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.enabled[ruleName]; !exists {
		return fmt.Errorf("unknown rule: %s", ruleName)
	}
	d.enabled[ruleName] = false
	d.logger.Info("Detection rule disabled", zap.String("rule", ruleName))
	return nil
}
