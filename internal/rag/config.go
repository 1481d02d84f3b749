package rag

const (
	MinTemperature = 0.0
	MaxTemperature = 2.0

	DefaultModel         = "qwen3:4b"
	DefaultTemperature   = 0.0
	DefaultContextWindow = 8192
	DefaultTopK          = 3
)

// ChainConfig holds the resolved parameters for one compiled chain. A
// config is immutable once bound into a chain; changing parameters means
// compiling a new chain.
type ChainConfig struct {
	Model         string
	Temperature   float64
	ContextWindow int
	TopK          int
	MaxTokens     int // 0 means no cap on answer length
}

func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		Model:         DefaultModel,
		Temperature:   DefaultTemperature,
		ContextWindow: DefaultContextWindow,
		TopK:          DefaultTopK,
	}
}

// ChainPatch carries the fields a caller wants to change. Nil fields keep
// their current values.
type ChainPatch struct {
	Model         *string
	Temperature   *float64
	ContextWindow *int
	TopK          *int
	MaxTokens     *int
}

// Merge applies the patch to a copy of the config and clamps the result.
func (c ChainConfig) Merge(p ChainPatch) ChainConfig {
	if p.Model != nil {
		c.Model = *p.Model
	}
	if p.Temperature != nil {
		c.Temperature = *p.Temperature
	}
	if p.ContextWindow != nil {
		c.ContextWindow = *p.ContextWindow
	}
	if p.TopK != nil {
		c.TopK = *p.TopK
	}
	if p.MaxTokens != nil {
		c.MaxTokens = *p.MaxTokens
	}
	return c.Clamp()
}

// Clamp forces every numeric field into its sane range. Out-of-range user
// input degrades to the nearest valid value rather than failing, and an
// empty model name falls back to the default.
func (c ChainConfig) Clamp() ChainConfig {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature < MinTemperature {
		c.Temperature = MinTemperature
	}
	if c.Temperature > MaxTemperature {
		c.Temperature = MaxTemperature
	}
	if c.ContextWindow < 1 {
		c.ContextWindow = DefaultContextWindow
	}
	if c.TopK < 1 {
		c.TopK = DefaultTopK
	}
	if c.MaxTokens < 0 {
		c.MaxTokens = 0
	}
	return c
}
