package models_test

import (
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/locallibrary/models"
)

func Test_DateOf_DropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	d := models.DateOf(time.Date(2026, 10, 15, 23, 30, 0, 0, loc))

	assert.Equal(t, "2026-10-15", d.String())
	assert.True(t, d.Equal(models.NewDate(2026, 10, 15)))
}

func Test_Date_Arithmetic(t *testing.T) {
	d := models.NewDate(2026, 2, 20)

	assert.Equal(t, "2026-03-20", d.AddDays(28).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.After(d.AddDays(-1)))
	assert.False(t, d.After(d))
}

func Test_Date_JSON(t *testing.T) {
	json := jsoniter.ConfigCompatibleWithStandardLibrary

	type payload struct {
		DueBack *models.Date `json:"due_back,omitempty"`
	}

	due := models.NewDate(2026, 11, 5)
	out, err := json.Marshal(payload{DueBack: &due})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due_back":"2026-11-05"}`, string(out))

	var in payload
	require.NoError(t, json.Unmarshal([]byte(`{"due_back":"2026-11-05"}`), &in))
	require.NotNil(t, in.DueBack)
	assert.True(t, in.DueBack.Equal(due))

	var empty payload
	require.NoError(t, json.Unmarshal([]byte(`{"due_back":null}`), &empty))
	assert.Nil(t, empty.DueBack)

	assert.Error(t, json.Unmarshal([]byte(`{"due_back":"05/11/2026"}`), &in))
}

func Test_Date_Scan(t *testing.T) {
	var d models.Date

	require.NoError(t, d.Scan(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-01-02", d.String())

	require.NoError(t, d.Scan([]byte("2026-03-04")))
	assert.Equal(t, "2026-03-04", d.String())

	assert.Error(t, d.Scan(42))

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", v)
}
