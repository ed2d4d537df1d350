package config

// LLM provider constants
const (
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// LLMConfig selects the model provider and names the agent.
type LLMConfig struct {
	Provider      string `env:"LLM_PROVIDER" yaml:"provider" default:"gemini"`
	AgentName     string `env:"AGENT_NAME" yaml:"agent_name" default:"Krishna_clone_agent"`
	DisableSearch bool   `env:"DISABLE_GOOGLE_SEARCH" yaml:"disable_search"`
}

// GeminiConfig holds Google Gemini-specific configuration
type GeminiConfig struct {
	APIKey      string `env:"GOOGLE_API_KEY" yaml:"-"`
	Model       string `env:"GEMINI_MODEL" yaml:"model" default:"gemini-2.5-flash-lite"`
	UseVertexAI bool   `env:"GOOGLE_GENAI_USE_VERTEXAI" yaml:"use_vertex_ai"`
	Project     string `env:"GOOGLE_CLOUD_PROJECT" yaml:"project"`
	Location    string `env:"GOOGLE_CLOUD_LOCATION" yaml:"location"`
}

// AnthropicConfig holds Anthropic-specific configuration
type AnthropicConfig struct {
	APIKey     string `env:"ANTHROPIC_API_KEY" yaml:"-"`
	Model      string `env:"CLAUDE_MODEL" yaml:"model" default:"claude-sonnet-4-5-20250929"`
	APIBaseURL string `env:"ANTHROPIC_API_URL" yaml:"api_base_url"`
	MaxTokens  int    `env:"ANTHROPIC_MAX_TOKENS" yaml:"max_tokens" default:"4096"`
}

// OpenAIConfig holds OpenAI-specific configuration
type OpenAIConfig struct {
	APIKey     string `env:"OPENAI_API_KEY" yaml:"-"`
	Model      string `env:"OPENAI_MODEL" yaml:"model" default:"gpt-4o-mini"`
	APIBaseURL string `env:"OPENAI_API_URL" yaml:"api_base_url"`
	MaxTokens  int    `env:"OPENAI_MAX_TOKENS" yaml:"max_tokens" default:"4096"`
}

// PersonaConfig overrides the agent's description and instruction. Empty
// values fall back to the built-in persona.
type PersonaConfig struct {
	Description     string `env:"AGENT_DESCRIPTION" yaml:"description"`
	Instruction     string `env:"AGENT_INSTRUCTION" yaml:"instruction"`
	InstructionFile string `env:"AGENT_INSTRUCTION_FILE" yaml:"instruction_file"`
}
