package calendar

import (
	"fmt"
	"math/big"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// DrawOutcome performs one weighted draw. A single uniform sample decides
// both win/lose and the tier: tier weights are scaled so their sum equals
// winProb, then walked cumulatively with first match. If the sample lands
// under winProb but float accumulation overshoots every band, the last
// (rarest) tier is awarded rather than failing the draw.
func DrawOutcome(tiers []Tier, winProb float64, rnd *rand.Rand) (Outcome, Tier) {
	if len(tiers) == 0 || winProb <= 0 {
		return OutcomeLose, Tier{}
	}

	sample := rnd.Float64()
	if sample >= winProb {
		return OutcomeLose, Tier{}
	}

	var totalWeight float64
	for _, t := range tiers {
		totalWeight += t.Weight
	}
	if totalWeight <= 0 {
		return OutcomeLose, Tier{}
	}

	scale := winProb / totalWeight
	var cumulative float64
	for _, t := range tiers {
		cumulative += t.Weight * scale
		if sample < cumulative {
			return OutcomeWin, t
		}
	}

	return OutcomeWin, tiers[len(tiers)-1]
}

// GenerateWinCode builds a self-verifiable win code:
//
//	WIN-{day}-{tierType}-{12 digits}-{4 digits}
//
// The 12-digit segment is the last 12 decimal digits of the millisecond
// timestamp raised to the fourth power; the 4-digit segment is zero-padded
// random. The whole code is uppercased.
func GenerateWinCode(day int, tierType string, at time.Time, rnd *rand.Rand) string {
	ts := big.NewInt(at.UnixMilli())
	ts.Exp(ts, big.NewInt(4), big.NewInt(1_000_000_000_000))

	code := fmt.Sprintf("WIN-%d-%s-%012d-%04d", day, tierType, ts, rnd.Intn(10000))
	return strings.ToUpper(code)
}

// VerifyCode checks a win code for structural validity. This is a format
// check only: a well-formed code that was never issued still verifies.
// Callers wanting provenance must additionally match the code against the
// locally retained prizes.
func VerifyCode(code string, tiers []Tier) VerificationResult {
	parts := strings.Split(strings.TrimSpace(code), "-")
	if len(parts) != 5 {
		return VerificationResult{Error: "malformed code: expected 5 segments"}
	}

	if parts[0] != "WIN" {
		return VerificationResult{Error: "malformed code: missing WIN prefix"}
	}

	day, err := strconv.Atoi(parts[1])
	if err != nil || strconv.Itoa(day) != parts[1] {
		return VerificationResult{Error: "malformed code: invalid day segment"}
	}
	if day < 1 || day > 24 {
		return VerificationResult{Error: fmt.Sprintf("day %d out of range", day)}
	}

	tier, known := TierByType(tiers, parts[2])
	if !known {
		return VerificationResult{Error: fmt.Sprintf("unknown tier %q", parts[2])}
	}

	if len(parts[3]) != 12 || !allDigits(parts[3]) {
		return VerificationResult{Error: "malformed code: invalid timestamp segment"}
	}
	if len(parts[4]) != 4 || !allDigits(parts[4]) {
		return VerificationResult{Error: "malformed code: invalid random segment"}
	}

	return VerificationResult{
		Valid:    true,
		Day:      day,
		TierType: tier.Type,
	}
}

func allDigits(s string) bool {
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
