package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/adk_webui/internal/config"
	"github.com/lewisedginton/adk_webui/pkg/logger"
)

func TestResolvePersonaDefaults(t *testing.T) {
	p := ResolvePersona(config.PersonaConfig{}, logger.Nop())
	assert.Equal(t, DefaultDescription, p.Description)
	assert.Equal(t, DefaultInstruction, p.Instruction)
	assert.Contains(t, p.Instruction, "Krishna's voice")
}

func TestResolvePersonaOverrides(t *testing.T) {
	p := ResolvePersona(config.PersonaConfig{Description: "d", Instruction: "i"}, logger.Nop())
	assert.Equal(t, "d", p.Description)
	assert.Equal(t, "i", p.Instruction)
}

func TestResolvePersonaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instruction.md")
	require.NoError(t, os.WriteFile(path, []byte("\nFrom file.\n"), 0o600))

	p := ResolvePersona(config.PersonaConfig{Instruction: "inline", InstructionFile: path}, logger.Nop())
	assert.Equal(t, "From file.", p.Instruction)
}

func TestResolvePersonaMissingFileFallsBack(t *testing.T) {
	p := ResolvePersona(config.PersonaConfig{Instruction: "inline", InstructionFile: "/nonexistent/file"}, logger.Nop())
	assert.Equal(t, "inline", p.Instruction)
}
