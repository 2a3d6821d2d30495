package pool

// Fallback calculator defaults, used when the reference venue has no row
// for the selected pair.
const (
	DefaultTier   = 1.0
	DefaultTVL    = 100000.0
	DefaultVolume = 50000.0
)

// sentinelSuffix tags the synthetic calculator row's DEX so it can never
// collide with a real venue name.
const sentinelSuffix = "-test"

// annualizationDays projects the 24h window to a yearly rate.
const annualizationDays = 365

// CalculatorInputs holds the user-entered what-if parameters for one pair.
// The values are ephemeral per-pair render state and are never persisted.
type CalculatorInputs struct {
	Tier   float64
	TVL    float64
	Volume float64
}

// APY projects the annualized yield for the entered parameters.
// A pool with no locked value yields nothing.
func (in CalculatorInputs) APY() float64 {
	if in.TVL <= 0 {
		return 0
	}
	return in.Tier * in.Volume / in.TVL * annualizationDays
}

// Row builds the synthetic comparison row for pair. Fees are fixed at zero:
// the calculator models a hypothetical position, not realized revenue.
func (in CalculatorInputs) Row(pair, referenceDEX string) Record {
	return Record{
		Pair:      pair,
		DEX:       Sentinel(referenceDEX),
		Tier:      in.Tier,
		TVL:       in.TVL,
		Volume24h: in.Volume,
		Fees24h:   0,
		APY24h:    in.APY(),
	}
}

// Sentinel returns the DEX tag used for synthetic calculator rows.
func Sentinel(referenceDEX string) string {
	return referenceDEX + sentinelSuffix
}

// IsReference reports whether dex is the reference venue or its synthetic
// calculator variant. Rendering highlights exactly these rows.
func IsReference(dex, referenceDEX string) bool {
	return dex == referenceDEX || dex == Sentinel(referenceDEX)
}

// DefaultsFor seeds calculator inputs for pair from the reference venue's
// row when one exists, falling back to the fixed defaults otherwise.
func DefaultsFor(records []Record, pair, referenceDEX string) CalculatorInputs {
	for _, r := range records {
		if r.Pair == pair && r.DEX == referenceDEX {
			return CalculatorInputs{
				Tier:   r.Tier,
				TVL:    r.TVL,
				Volume: r.Volume24h,
			}
		}
	}
	return CalculatorInputs{
		Tier:   DefaultTier,
		TVL:    DefaultTVL,
		Volume: DefaultVolume,
	}
}
