package pipeline

import "testing"

func TestDetectTimesheet(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "hebrew report",
			text: "דוח נוכחות\n01/01/2024 08:00 17:00\n02/01/2024 09:00 18:00",
			want: true,
		},
		{
			name: "english report",
			text: "Monthly timesheet hours\n01/01/2024 08:00 17:00 8.50",
			want: true,
		},
		{
			name: "plain prose",
			text: "hello, please see the agenda for tomorrow's meeting",
			want: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectTimesheet(tc.text)
			if got.IsTimesheet != tc.want {
				t.Fatalf("got %v (score %.2f) want %v", got.IsTimesheet, got.Score, tc.want)
			}
		})
	}
}
