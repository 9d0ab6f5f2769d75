package enums

import "fmt"

// NoticeLevel classifies user-facing notices.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

var validNoticeLevels = []NoticeLevel{
	NoticeSuccess,
	NoticeInfo,
	NoticeWarning,
	NoticeError,
}

// String implements fmt.Stringer.
func (n NoticeLevel) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NoticeLevel.
func (n NoticeLevel) IsValid() bool {
	for _, candidate := range validNoticeLevels {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNoticeLevel converts raw input into a NoticeLevel.
func ParseNoticeLevel(value string) (NoticeLevel, error) {
	for _, candidate := range validNoticeLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notice level %q", value)
}
