package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshul8824/BIM/internal/apperr"
	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/validation"
)

func TestColumnName(t *testing.T) {
	cases := map[string]string{
		model.FieldPlannedLabour:           "planned_labour",
		model.FieldPlannedMaterial:         "planned_material",
		model.FieldStartDate:               "start_date",
		model.FieldActualMaterialUsedToday: "actual_material_used_today",
		model.FieldFiveDayCost:             "five_day_cost",
		model.FieldMaterialCostInDays:      "material_cost_in_days",
		model.FieldName:                    "name",
	}
	for field, want := range cases {
		assert.Equal(t, want, columnName(field), field)
	}
}

func TestBuildUpdateOnlyKnownFields(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	patch := validation.Document{
		model.FieldStatus:        model.StatusCompleted,
		model.FieldPlannedLabour: 12.0,
		"unknown":                "ignored",
	}

	query, args, err := buildUpdate("projects", projectFields, patch, at, "p1", "id")
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE projects SET planned_labour = $1, status = $2, updated_at = $3 WHERE id = $4 RETURNING id",
		query)
	assert.Equal(t, []any{12.0, model.StatusCompleted, at, "p1"}, args)
}

func TestBuildUpdateEmptyPatchStillTouchesUpdatedAt(t *testing.T) {
	at := time.Now()
	query, args, err := buildUpdate("users", userFields, validation.Document{}, at, "u1", userColumns)
	require.NoError(t, err)
	assert.Contains(t, query, "SET updated_at = $1 WHERE id = $2")
	assert.Len(t, args, 2)
}

func TestBuildUpdateEncodesJSONAndOptionals(t *testing.T) {
	patch := validation.Document{
		model.FieldPlannedMaterial: map[string]any{"cement": 10.0},
		model.FieldEndDate:         time.Time{},
	}
	_, args, err := buildUpdate("projects", projectFields, patch, time.Now(), "p1", "id")
	require.NoError(t, err)

	// 键按字母序：endDate, plannedMaterial
	assert.Nil(t, args[0].(*time.Time))
	assert.JSONEq(t, `{"cement":10}`, string(args[1].([]byte)))
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, ""))
	assert.ErrorIs(t, translate(fmt.Errorf("scan: %w", pgx.ErrNoRows), ""), apperr.ErrNotFound)

	dup := translate(&pgconn.PgError{Code: "23505"}, model.FieldEmail)
	var dk *apperr.DuplicateKeyError
	require.True(t, errors.As(dup, &dk))
	assert.Equal(t, model.FieldEmail, dk.Field)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other, model.FieldEmail))
}

func TestJSONHelpers(t *testing.T) {
	v, err := encodeJSON(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	decoded, err := decodeJSON([]byte(`[{"item":"steel","qty":3}]`))
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"item": "steel", "qty": 3.0}}, decoded)

	decoded, err = decodeJSON(nil)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}
