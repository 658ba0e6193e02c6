package cloak

import (
	"strings"
	"testing"
)

func TestPhoneStrategy(t *testing.T) {
	s := PhoneStrategy()

	tests := []struct {
		input    string
		expected string
	}{
		{"13812345678", "138****5678"},
		{"138 1234 5678", "138****5678"},
		{"15900001111", "159****1111"},
		{"12345", "12345"},
		{"", ""},
	}

	for _, tt := range tests {
		result := s.Apply(tt.input, nil)
		if result != tt.expected {
			t.Errorf("PhoneStrategy(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestEmailStrategy(t *testing.T) {
	s := EmailStrategy()

	tests := []struct {
		input    string
		expected string
	}{
		{"ab12345@github.com", "ab****@github.com"},
		{"zhangsan@example.com", "zh****@example.com"},
		{"a@b.com", "a@b.com"}, // Local part too short
		{"noatsign", "noatsign"},
	}

	for _, tt := range tests {
		result := s.Apply(tt.input, nil)
		if result != tt.expected {
			t.Errorf("EmailStrategy(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestIDCardStrategy(t *testing.T) {
	s := IDCardStrategy()

	tests := []struct {
		input    string
		args     []string
		expected string
	}{
		{"110101199003071234", nil, "110101*********234"},
		{"11010119900307123X", nil, "110101*********23X"},
		{"110101900307123", nil, "110101******123"},
		{"12345", nil, "12345"},
		{"12345", []string{"strict"}, "*****"},
		{"", []string{"strict"}, ""},
	}

	for _, tt := range tests {
		result := s.Apply(tt.input, tt.args)
		if result != tt.expected {
			t.Errorf("IDCardStrategy(%q, %v) = %q, want %q", tt.input, tt.args, result, tt.expected)
		}
	}
}

func TestAddressStrategy(t *testing.T) {
	s := AddressStrategy()

	tests := []struct {
		input    string
		expected string
	}{
		{"北京市海淀区中关村大街27号1101室", "北京市********27号1101室"},
		{"上海市浦东", "上海市**"},
		{"   ", "   "},
		{"", ""},
	}

	for _, tt := range tests {
		result := s.Apply(tt.input, nil)
		if result != tt.expected {
			t.Errorf("AddressStrategy(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestNameStrategy(t *testing.T) {
	s := NameStrategy()

	tests := []struct {
		input    string
		expected string
	}{
		{"张三", "张*"},
		{"张三丰", "张**"},
		{"John", "J***"},
		{"", ""},
	}

	for _, tt := range tests {
		result := s.Apply(tt.input, nil)
		if result != tt.expected {
			t.Errorf("NameStrategy(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestBankStrategy(t *testing.T) {
	s := BankStrategy()

	tests := []struct {
		input    string
		args     []string
		expected string
	}{
		{"6222021234567890123", nil, "622202" + strings.Repeat("*", 9) + "0123"},
		{"6222 0212 3456 7890 123", nil, "622202" + strings.Repeat("*", 9) + "0123"},
		{"6222021234567890123", []string{"4", "4"}, "6222" + strings.Repeat("*", 11) + "0123"},
		{"6222021234567890123", []string{"x", "4"}, "622202" + strings.Repeat("*", 9) + "0123"},
		{"6222021234", []string{"6", "6"}, "6222021234"}, // Shorter than prefix+suffix
		{"123456789", nil, "123456789"},                  // Too short
		{"6222021234567890123", []string{"9223372036854775807", "1"}, "6222021234567890123"},
		{"6222021234567890123", []string{"1", "9223372036854775807"}, "6222021234567890123"},
	}

	for _, tt := range tests {
		result := s.Apply(tt.input, tt.args)
		if result != tt.expected {
			t.Errorf("BankStrategy(%q, %v) = %q, want %q", tt.input, tt.args, result, tt.expected)
		}
	}
}

func TestStrategiesIdempotentOnEmpty(t *testing.T) {
	for _, s := range []Strategy{PhoneStrategy(), EmailStrategy(), IDCardStrategy(), AddressStrategy(), NameStrategy(), BankStrategy()} {
		if got := s.Apply("", nil); got != "" {
			t.Errorf("%s(\"\") = %q, want empty", s.Name(), got)
		}
	}
}
