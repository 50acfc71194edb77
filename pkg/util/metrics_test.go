package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeOperationMicroseconds(t *testing.T) {
	called := false
	d := TimeOperationMicroseconds(func() { called = true })
	assert.True(t, called)
	assert.GreaterOrEqual(t, d, int64(0))
}

func TestTimeStageWritesPoint(t *testing.T) {
	mock := &MockWriteAPI{}

	err := TimeStage(mock, "toolbox.stage", map[string]string{"stage": "design"}, func() (int, error) {
		return 91, nil
	})
	require.NoError(t, err)

	points := mock.Points()
	require.Len(t, points, 1)
	assert.Equal(t, "toolbox.stage", points[0].Name())

	fields := map[string]interface{}{}
	for _, f := range points[0].FieldList() {
		fields[f.Key] = f.Value
	}
	assert.EqualValues(t, 91, fields["samples"])
	assert.Contains(t, fields, "duration_us")

	tags := map[string]string{}
	for _, tag := range points[0].TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, "design", tags["stage"])
}

func TestTimeStageError(t *testing.T) {
	mock := &MockWriteAPI{}
	boom := errors.New("boom")

	err := TimeStage(mock, "toolbox.stage", nil, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Len(t, mock.Points(), 1)
}
