package gmail_tools

import (
	"testing"

	gmail_v1 "google.golang.org/api/gmail/v1"
)

func TestFormatFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter *gmail_v1.Filter
		want   string
	}{
		{
			name: "from with label action",
			filter: &gmail_v1.Filter{
				Id:       "f1",
				Criteria: &gmail_v1.FilterCriteria{From: "news@example.com"},
				Action:   &gmail_v1.FilterAction{AddLabelIds: []string{"Label_1"}},
			},
			want: "- f1: [from:news@example.com] -> [add Label_1]",
		},
		{
			name: "archive action",
			filter: &gmail_v1.Filter{
				Id:       "f2",
				Criteria: &gmail_v1.FilterCriteria{Subject: "invoice", HasAttachment: true},
				Action:   &gmail_v1.FilterAction{RemoveLabelIds: []string{"INBOX"}},
			},
			want: "- f2: [subject:invoice has:attachment] -> [remove INBOX]",
		},
		{
			name: "forward action",
			filter: &gmail_v1.Filter{
				Id:       "f3",
				Criteria: &gmail_v1.FilterCriteria{Query: "list:dev@example.com"},
				Action:   &gmail_v1.FilterAction{Forward: "archive@example.com"},
			},
			want: "- f3: [query:list:dev@example.com] -> [forward archive@example.com]",
		},
		{
			name:   "empty filter",
			filter: &gmail_v1.Filter{Id: "f4"},
			want:   "- f4: [] -> []",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatFilter(tt.filter); got != tt.want {
				t.Errorf("formatFilter() = %q, want %q", got, tt.want)
			}
		})
	}
}
