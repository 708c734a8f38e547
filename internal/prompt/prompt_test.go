package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Eres un profesor de Primaria, claro y sin emoticonos.", r.System())

	out, err := r.Question(QuestionData{
		Topic:    "suma llevando",
		Intent:   "duda",
		Question: "¿Cómo sumo 27 + 46?",
		Context:  "[teoria | suma | suma | 2]\nPara sumar...",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Eres una profesora de matemáticas"))
	assert.Contains(t, out, "Tema: suma llevando | Intención: duda\nPregunta: ¿Cómo sumo 27 + 46?")
	assert.Contains(t, out, "Contexto (úsalo solo si ayuda):\n[teoria | suma | suma | 2]")
	assert.Contains(t, out, "LOMLOE")
}

func TestQuestion_GeneralTopic(t *testing.T) {
	out, err := MustLoadDefault().Question(QuestionData{Intent: "duda", Question: "hola"})
	require.NoError(t, err)
	assert.Contains(t, out, "Tema: general | Intención: duda")
}

func TestExercises(t *testing.T) {
	out, err := MustLoadDefault().Exercises(ExerciseData{Topic: "sumas llevando", Difficulty: 2})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Quiero ejercicios de sumas llevando de dificultad 2."))
	assert.Contains(t, out, "```text ... ```")
}

func TestLoad_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("system: \"Sé breve.\"\nquestion: \"{{.Topic}}: {{.Question}}\"\n"), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Sé breve.", r.System())

	out, err := r.Question(QuestionData{Topic: "resta", Question: "10-3"})
	require.NoError(t, err)
	assert.Equal(t, "resta: 10-3", out)

	ex, err := r.Exercises(ExerciseData{Topic: "resta", Difficulty: 1})
	require.NoError(t, err)
	assert.Contains(t, ex, "Quiero ejercicios de resta", "unset keys keep defaults")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = New(Templates{Question: "{{.Topic"})
	assert.Error(t, err)
}
