package youtube

import "testing"

func TestParseVideoDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration string
		want     int
		wantErr  bool
	}{
		{name: "minutes and seconds", duration: "PT4M13S", want: 253},
		{name: "hours minutes seconds", duration: "PT1H2M3S", want: 3723},
		{name: "seconds only", duration: "PT45S", want: 45},
		{name: "hours only", duration: "PT2H", want: 7200},
		{name: "missing prefix", duration: "4M13S", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVideoDuration(tt.duration)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVideoDuration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseVideoDuration() = %d, want %d", got, tt.want)
			}
		})
	}
}
