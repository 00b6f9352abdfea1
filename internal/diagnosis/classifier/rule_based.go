package classifier

import (
	"strings"
	"unicode/utf8"

	"github.com/aegis-support-poc/client/internal/diagnosis/model"
)

// RuleConfidence is the fixed trust level attached to any rule that fires.
// The classifier is not probabilistic; this is a static score for "a known
// keyword matched", not a learned value.
const RuleConfidence = 0.84

// minQueryRunes is the shortest normalized input worth classifying.
const minQueryRunes = 3

// rule maps a keyword to the intent it signals.
type rule struct {
	keyword string
	intent  string
}

// defaultRules is an ordered priority list: when several keywords appear in
// one query, the earliest rule wins. Do not sort.
var defaultRules = []rule{
	{"otp", "GenerateOTP"},
	{"token", "GenerateOTP"},
	{"push", "PushApprovalTimeout"},
	{"approve", "PushApprovalTimeout"},
	{"timeout", "PushApprovalTimeout"},
	{"passkey", "PasskeyRegistrationFailure"},
	{"webauthn", "PasskeyRegistrationFailure"},
	{"biometric", "BiometricLockout"},
	{"fingerprint", "BiometricLockout"},
	{"face", "BiometricLockout"},
	{"enroll", "EnrollmentFailure"},
	{"register", "EnrollmentFailure"},
	{"sync", "TokenSyncError"},
	{"time", "TimeDriftFailure"},
	{"clock", "TimeDriftFailure"},
	{"server", "ServerUnreachable"},
	{"offline", "ServerUnreachable"},
	{"config", "ConfigIssue"},
}

// RuleBased is the deterministic keyword classifier used for the on-device
// diagnosis path.
type RuleBased struct {
	rules []rule
}

func NewRuleBased() *RuleBased {
	return &RuleBased{rules: defaultRules}
}

// Classify normalizes the query and scans the rule table in priority order.
// It returns nil when the normalized input is shorter than three runes or no
// keyword matches.
func (c *RuleBased) Classify(query string) *model.Prediction {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(normalized) < minQueryRunes {
		return nil
	}
	for _, r := range c.rules {
		if strings.Contains(normalized, r.keyword) {
			return &model.Prediction{Intent: r.intent, Confidence: RuleConfidence}
		}
	}
	return nil
}
