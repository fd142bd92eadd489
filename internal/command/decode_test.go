package command

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"f3-catalog/backend/internal/platform/domainerr"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		env       Envelope
		wantKind  Kind
		wantField string
	}{
		{
			name:     "add event type",
			env:      Envelope{Kind: KindAddEventType, Payload: json.RawMessage(`{"org_id":3,"name":"Bootcamp","category":"first_f"}`)},
			wantKind: KindAddEventType,
		},
		{
			name:     "create series",
			env:      Envelope{Kind: KindCreateSeries, Payload: json.RawMessage(`{"org_id":3,"name":"The Grind","start_date":"2024-01-01","day_of_week":1,"recurrence_pattern":"weekly"}`)},
			wantKind: KindCreateSeries,
		},
		{
			name:      "unknown kind",
			env:       Envelope{Kind: "launch_rocket", Payload: json.RawMessage(`{}`)},
			wantField: "kind",
		},
		{
			name:      "missing payload",
			env:       Envelope{Kind: KindAssignAdmin},
			wantField: "payload",
		},
		{
			name:      "unknown field",
			env:       Envelope{Kind: KindAssignAdmin, Payload: json.RawMessage(`{"org_id":3,"user_id":4,"role":"owner"}`)},
			wantField: "payload",
		},
		{
			name:      "missing org",
			env:       Envelope{Kind: KindAssignAdmin, Payload: json.RawMessage(`{"user_id":4}`)},
			wantField: "org_id",
		},
		{
			name:     "mixed case category",
			env:      Envelope{Kind: KindAddEventType, Payload: json.RawMessage(`{"org_id":3,"name":"Ruck","category":" First_F "}`)},
			wantKind: KindAddEventType,
		},
		{
			name:     "mixed case pattern",
			env:      Envelope{Kind: KindCreateSeries, Payload: json.RawMessage(`{"org_id":3,"name":"X","start_date":"2024-01-01","day_of_week":1,"recurrence_pattern":"Weekly"}`)},
			wantKind: KindCreateSeries,
		},
		{
			name:      "missing category",
			env:       Envelope{Kind: KindAddEventType, Payload: json.RawMessage(`{"org_id":3,"name":"Ruck"}`)},
			wantField: "category",
		},
		{
			name:      "day of week out of range",
			env:       Envelope{Kind: KindCreateSeries, Payload: json.RawMessage(`{"org_id":3,"name":"X","start_date":"2024-01-01","day_of_week":8,"recurrence_pattern":"weekly"}`)},
			wantField: "day_of_week",
		},
		{
			name:      "bad latitude",
			env:       Envelope{Kind: KindAddLocation, Payload: json.RawMessage(`{"org_id":3,"name":"Park","latitude":123.0}`)},
			wantField: "latitude",
		},
		{
			name:      "non-positive user in list",
			env:       Envelope{Kind: KindReplaceAdmins, Payload: json.RawMessage(`{"org_id":3,"user_ids":[4,0]}`)},
			wantField: "user_ids[1]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Decode(tt.env)
			if tt.wantField != "" {
				require.True(t, domainerr.IsValidation(err), "got %v", err)
				var verr *domainerr.ValidationError
				require.ErrorAs(t, err, &verr)
				require.Equal(t, tt.wantField, verr.Field)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantKind, cmd.Kind())
			require.Equal(t, int64(3), cmd.TargetOrg())
		})
	}
}

func TestDecode_PreservesOptionalFields(t *testing.T) {
	cmd, err := Decode(Envelope{Kind: KindUpdateSeries,
		Payload: json.RawMessage(`{"org_id":3,"series_id":9,"end_date":"","location_id":0}`)})
	require.NoError(t, err)
	u := cmd.(*UpdateSeries)
	require.NotNil(t, u.EndDate)
	require.Empty(t, *u.EndDate)
	require.Equal(t, int64(0), *u.LocationID)
	require.Nil(t, u.Name)
}

func TestRegistryCoversEveryKind(t *testing.T) {
	require.Len(t, Kinds(), 27)
	for _, k := range Kinds() {
		cmd := registry[k]()
		require.Equal(t, k, cmd.Kind())
	}
}
