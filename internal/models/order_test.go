package models

import (
	"encoding/json"
	"testing"
)

func TestPhoneListValueSerializesAsJSONArray(t *testing.T) {
	phones := PhoneList{"+79001234567", "+79111234567"}

	value, err := phones.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if value != `["+79001234567","+79111234567"]` {
		t.Fatalf("unexpected serialized form: %v", value)
	}

	var nilPhones PhoneList
	value, err = nilPhones.Value()
	if err != nil {
		t.Fatalf("Value on nil: %v", err)
	}
	if value != "[]" {
		t.Fatalf("nil phones should serialize as [], got %v", value)
	}
}

func TestPhoneListScanRoundTrip(t *testing.T) {
	original := PhoneList{"+7900", "+7911"}
	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var scanned PhoneList
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(scanned) != 2 || scanned[0] != "+7900" || scanned[1] != "+7911" {
		t.Fatalf("round trip lost data: %v", scanned)
	}
}

func TestPhoneListScanLegacyScalar(t *testing.T) {
	var phones PhoneList
	if err := phones.Scan("+79001234567"); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(phones) != 1 || phones[0] != "+79001234567" {
		t.Fatalf("legacy scalar should become a one-element list, got %v", phones)
	}
}

func TestOrderJSONExposesPhonesAsArray(t *testing.T) {
	order := Order{ID: "abc", Phones: nil}

	data, err := json.Marshal(order)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	phones, ok := decoded["phones"].([]interface{})
	if !ok {
		t.Fatalf("phones should always be an array, got %T", decoded["phones"])
	}
	if len(phones) != 0 {
		t.Fatalf("expected empty array, got %v", phones)
	}
}
