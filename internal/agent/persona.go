package agent

import (
	"os"
	"strings"

	"github.com/lewisedginton/adk_webui/internal/config"
	"github.com/lewisedginton/adk_webui/pkg/logger"
)

// DefaultDescription and DefaultInstruction define the built-in persona.
const (
	DefaultDescription = "A Krishna-persona agent that speaks with the calm, decisive, and " +
		"detached tone of Krishna from the Mahabharata and Bhagavad Gita. " +
		"Answer in detail and use Hindi/English as per question dialect."

	DefaultInstruction = "Answer in detail as per question and use Hindi/English as per question dialect. " +
		"Respond exactly in Krishna's voice: firm, clear, detached, and rooted in dharma. " +
		"No politeness, no flattery, no praise of the user's question, no emotional cushioning, " +
		"no modern filler words, and no LLM-style phrases. Krishna gives verdicts, not validation. " +
		"Speak with strategic clarity and unshaken authority. Use metaphors only when they sharpen dharma. " +
		"For factual or current topics, use Google Search. For dilemmas, morality, or inner conflict, " +
		"answer strictly as Krishna: steady, direct, and free from hesitation."
)

// Persona is the resolved description and instruction.
type Persona struct {
	Description string
	Instruction string
}

// ResolvePersona applies overrides in order: instruction file, inline
// instruction, built-in default. An unreadable file is logged and skipped.
func ResolvePersona(cfg config.PersonaConfig, log logger.Logger) Persona {
	p := Persona{Description: DefaultDescription, Instruction: DefaultInstruction}
	if d := strings.TrimSpace(cfg.Description); d != "" {
		p.Description = d
	}
	if i := strings.TrimSpace(cfg.Instruction); i != "" {
		p.Instruction = i
	}

	if cfg.InstructionFile == "" {
		return p
	}
	content, err := os.ReadFile(cfg.InstructionFile)
	if err != nil {
		log.Warn("Could not load instruction file, using configured instructions",
			logger.StringField("filename", cfg.InstructionFile),
			logger.ErrorField(err))
		return p
	}
	if i := strings.TrimSpace(string(content)); i != "" {
		p.Instruction = i
		log.Info("Loaded agent instructions", logger.StringField("filename", cfg.InstructionFile))
	}
	return p
}
