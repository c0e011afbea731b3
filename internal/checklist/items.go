package checklist

import (
	"encoding/json"
	"fmt"
)

// Items is the tick-box set of a checklist. It is either OpeningItems or ClosingItems.
type Items interface {
	checklistType() Type
}

// OpeningItems are the checks performed before doors open.
type OpeningItems struct {
	FireDoorsNorthChainCollected bool `json:"fireDoorsNorthChainCollected"`
	FireDoorsSouthChainCollected bool `json:"fireDoorsSouthChainCollected"`
	FireDoorsUnlocked            bool `json:"fireDoorsUnlocked"`
	RunwayLightingOperating      bool `json:"runwayLightingOperating"`
	FunctionalSafetyLightingOn   bool `json:"functionalSafetyLightingOn"`
	CCTVOperating                bool `json:"cctvOperating"`
	FireAlarmOperational         bool `json:"fireAlarmOperational"`
	RadioChecksIncTango          bool `json:"radioChecksIncTango"`
	GatesShuttersSecuredOpen     bool `json:"gatesShuttersSecuredOpen"`
	IDScannerOperation           bool `json:"idScannerOperation"`
	TillSystemReset              bool `json:"tillSystemReset"`
	GasTurnedOn                  bool `json:"gasTurnedOn"`
	RunwayClean                  bool `json:"runwayClean"`
	SoundSystemWorking           bool `json:"soundSystemWorking"`
	LasersOn                     bool `json:"lasersOn"`
	SmokeMachinesFull            bool `json:"smokeMachinesFull"`
	LEDScreenProjectorsOnWorking bool `json:"ledScreenProjectorsOnWorking"`
	PostMixFull                  bool `json:"postMixFull"`
	FireAlarmIsolated            bool `json:"fireAlarmIsolated"`
}

func (OpeningItems) checklistType() Type { return TypeOpening }

// ClosingItems are the checks performed at lock-up.
type ClosingItems struct {
	FireDoor1LockedSecured       bool `json:"fireDoor1LockedSecured"`
	FireDoor2LockedSecured       bool `json:"fireDoor2LockedSecured"`
	FireDoor3LockedSecured       bool `json:"fireDoor3LockedSecured"`
	FireDoor4LockedSecured       bool `json:"fireDoor4LockedSecured"`
	FireDoor5LockedSecured       bool `json:"fireDoor5LockedSecured"`
	FireDoor6LockedSecured       bool `json:"fireDoor6LockedSecured"`
	GentsWCCleared               bool `json:"gentsWcCleared"`
	LadiesWCCleared              bool `json:"ladiesWcCleared"`
	PhRootClear                  bool `json:"phrootClear"`
	LV3Clear                     bool `json:"lv3Clear"`
	LV2Clear                     bool `json:"lv2Clear"`
	LV1Clear                     bool `json:"lv1Clear"`
	FrontDoorsLocked             bool `json:"frontDoorsLocked"`
	RunwayClean                  bool `json:"runwayClean"`
	BarsClean                    bool `json:"barsClean"`
	DishwashersOff               bool `json:"dishwashersOff"`
	GasesOff                     bool `json:"gasesOff"`
	DJGearOff                    bool `json:"djGearOff"`
	FireAlarmTakenOutOfIsolation bool `json:"fireAlarmTakenOutOfIsolation"`
	RadiosReturnedOnCharge       bool `json:"radiosReturnedOnCharge"`
	TangoLinkSignedOff           bool `json:"tangoLinkSignedOff"`
}

func (ClosingItems) checklistType() Type { return TypeClosing }

var openingItemKeys = []string{
	"fireDoorsNorthChainCollected",
	"fireDoorsSouthChainCollected",
	"fireDoorsUnlocked",
	"runwayLightingOperating",
	"functionalSafetyLightingOn",
	"cctvOperating",
	"fireAlarmOperational",
	"radioChecksIncTango",
	"gatesShuttersSecuredOpen",
	"idScannerOperation",
	"tillSystemReset",
	"gasTurnedOn",
	"runwayClean",
	"soundSystemWorking",
	"lasersOn",
	"smokeMachinesFull",
	"ledScreenProjectorsOnWorking",
	"postMixFull",
	"fireAlarmIsolated",
}

var closingItemKeys = []string{
	"fireDoor1LockedSecured",
	"fireDoor2LockedSecured",
	"fireDoor3LockedSecured",
	"fireDoor4LockedSecured",
	"fireDoor5LockedSecured",
	"fireDoor6LockedSecured",
	"gentsWcCleared",
	"ladiesWcCleared",
	"phrootClear",
	"lv3Clear",
	"lv2Clear",
	"lv1Clear",
	"frontDoorsLocked",
	"runwayClean",
	"barsClean",
	"dishwashersOff",
	"gasesOff",
	"djGearOff",
	"fireAlarmTakenOutOfIsolation",
	"radiosReturnedOnCharge",
	"tangoLinkSignedOff",
}

// ItemKeys lists the item names that belong to t.
func ItemKeys(t Type) []string {
	switch t {
	case TypeOpening:
		return openingItemKeys
	case TypeClosing:
		return closingItemKeys
	}
	return nil
}

func hasItem(t Type, key string) bool {
	for _, k := range ItemKeys(t) {
		if k == key {
			return true
		}
	}
	return false
}

// blankItems is the initial document: every item of t unticked.
func blankItems(t Type) []byte {
	doc := make(map[string]bool, len(ItemKeys(t)))
	for _, k := range ItemKeys(t) {
		doc[k] = false
	}
	raw, _ := json.Marshal(doc)
	return raw
}

// decodeItems reads a stored document into the variant for t. Unknown keys are ignored.
func decodeItems(t Type, raw []byte) (Items, error) {
	switch t {
	case TypeOpening:
		var items OpeningItems
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf("decode opening items: %w", err)
			}
		}
		return items, nil
	case TypeClosing:
		var items ClosingItems
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf("decode closing items: %w", err)
			}
		}
		return items, nil
	}
	return nil, fmt.Errorf("unknown checklist type %q", t)
}
