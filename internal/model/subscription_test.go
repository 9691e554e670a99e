package model_test

import (
	"testing"
	"time"

	"briefbox/backend/internal/model"

	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    model.TimeOfDay
		wantErr bool
	}{
		{in: "09:30", want: model.TimeOfDay{Hour: 9, Minute: 30}},
		{in: "00:00", want: model.TimeOfDay{}},
		{in: "23:59", want: model.TimeOfDay{Hour: 23, Minute: 59}},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := model.ParseTimeOfDay(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	require.Equal(t, "09:05", model.TimeOfDay{Hour: 9, Minute: 5}.String())
	require.Equal(t, "00:00", model.TimeOfDay{}.String())
	require.Equal(t, "23:59", model.TimeOfDay{Hour: 23, Minute: 59}.String())
}

func TestParseWeekday(t *testing.T) {
	day, err := model.ParseWeekday("wednesday")
	require.NoError(t, err)
	require.Equal(t, time.Wednesday, day)

	day, err = model.ParseWeekday("Sunday")
	require.NoError(t, err)
	require.Equal(t, time.Sunday, day)

	_, err = model.ParseWeekday("someday")
	require.Error(t, err)
}
