package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reactorcalc/internal/calcerr"
	"github.com/roach88/reactorcalc/internal/model"
	"github.com/roach88/reactorcalc/internal/stoich"
	"github.com/roach88/reactorcalc/internal/thermal"
	"github.com/roach88/reactorcalc/internal/units"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E005", "requests directory not found", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E005", resp.Error.Code)
	assert.Equal(t, "requests directory not found", resp.Error.Message)
	assert.Nil(t, resp.Error.Details)
}

func TestOutputFormatter_JSONDoesNotEscapeSymbols(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"symbol": "kmol/(m³·s)", "cmp": "<"}))
	assert.Contains(t, buf.String(), "kmol/(m³·s)")
	assert.Contains(t, buf.String(), `"<"`)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, formatter.Error("E008", "bad flag", "details here"))
	assert.Contains(t, buf.String(), "Error [E008]: bad flag")
	assert.Contains(t, buf.String(), "Details: details here")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	quiet := &OutputFormatter{Writer: out, ErrWriter: errOut}
	quiet.VerboseLog("hidden %d", 1)
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())

	loud := &OutputFormatter{Writer: out, ErrWriter: errOut, Verbose: true}
	loud.VerboseLog("shown %d", 2)
	assert.Empty(t, out.String())
	assert.Equal(t, "shown 2\n", errOut.String())

	noErr := &OutputFormatter{Writer: out, Verbose: true}
	assert.Same(t, out, noErr.GetErrWriter())
}

func TestOutputFormatter_Quantity(t *testing.T) {
	f := &OutputFormatter{Precision: 3}

	bare := f.Quantity(0.5, "")
	assert.True(t, strings.HasPrefix(bare, "0.5"), bare)
	assert.NotContains(t, bare, " ")

	withUnit := f.Quantity(0.5, "s")
	assert.True(t, strings.HasPrefix(withUnit, "0.5"), withUnit)
	assert.True(t, strings.HasSuffix(withUnit, " s"), withUnit)
}

func TestOutputFormatter_WriteEnvelope(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	f.WriteEnvelope("batch", &model.Envelope{
		ID: "req-1",
		Response: &model.Response{
			Mode:     model.ModeConversion,
			Reactor:  model.Batch,
			System:   units.SI,
			Values:   map[string]float64{"conversion": 0.5, "residence_time": 10},
			Units:    map[string]string{"residence_time": "s"},
			Labels:   map[string]string{"conversion": "Conversion", "residence_time": "Residence time"},
			Keys:     []string{"conversion", "residence_time"},
			Limiting: stoich.A,
		},
	})
	out := buf.String()
	assert.Contains(t, out, "✓ batch (batch conversion, SI)")
	assert.Contains(t, out, "Conversion:")
	assert.Contains(t, out, "Residence time:")
	assert.Contains(t, out, " s\n")
	assert.Contains(t, out, "Limiting reactant:")

	buf.Reset()
	f.WriteEnvelope("bed", &model.Envelope{
		Response: &model.Response{
			Mode: model.ModeTemperature, Reactor: model.PBR, System: units.CGS,
			Profile: []thermal.Sample{{Position: 0, Temperature: 500}},
		},
	})
	assert.Contains(t, buf.String(), "Profile:")
	assert.Contains(t, buf.String(), "cm")
	assert.Contains(t, buf.String(), "K\n")

	buf.Reset()
	f.WriteEnvelope("broken", &model.Envelope{
		Error: &model.Failure{Kind: calcerr.KindDomain, Field: "geometry.time", Message: "must be non-negative"},
	})
	assert.Equal(t, "✗ broken\n  DomainError (geometry.time): must be non-negative\n", buf.String())
}

func TestExitError(t *testing.T) {
	base := errors.New("boom")

	err := WrapExitError(ExitCommandError, "failed", base)
	assert.Equal(t, "failed: boom", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", err)))

	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
	assert.Equal(t, ExitFailure, GetExitCode(base))
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
}
