package models

import "strings"

type TitleType string

const (
	TitleGame  TitleType = "GAME"
	TitleVideo TitleType = "VIDEO"
	TitleBook  TitleType = "BOOK"
)

func ParseTitleType(s string) (TitleType, bool) {
	switch TitleType(strings.ToUpper(strings.TrimSpace(s))) {
	case TitleGame:
		return TitleGame, true
	case TitleVideo:
		return TitleVideo, true
	case TitleBook:
		return TitleBook, true
	}
	return "", false
}

type UnitType string

const (
	UnitVolume  UnitType = "VOLUME"
	UnitEpisode UnitType = "EPISODE"
	UnitRoute   UnitType = "ROUTE"
)

func ParseUnitType(s string) (UnitType, bool) {
	switch UnitType(strings.ToUpper(strings.TrimSpace(s))) {
	case UnitVolume:
		return UnitVolume, true
	case UnitEpisode:
		return UnitEpisode, true
	case UnitRoute:
		return UnitRoute, true
	}
	return "", false
}

// ContentStatus is the soft-delete flag shared by titles, units,
// characters and comments.
type ContentStatus string

const (
	StatusActive  ContentStatus = "ACTIVE"
	StatusHidden  ContentStatus = "HIDDEN"
	StatusDeleted ContentStatus = "DELETED"
)

type ProgressStatus string

const (
	ProgressNone       ProgressStatus = "NONE"
	ProgressInProgress ProgressStatus = "PROGRESS"
	ProgressDone       ProgressStatus = "DONE"
)

func ParseProgressStatus(s string) (ProgressStatus, bool) {
	switch ProgressStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case ProgressNone:
		return ProgressNone, true
	case ProgressInProgress:
		return ProgressInProgress, true
	case ProgressDone:
		return ProgressDone, true
	}
	return "", false
}

type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

func ParseVisibility(s string) (Visibility, bool) {
	switch Visibility(strings.ToUpper(strings.TrimSpace(s))) {
	case VisibilityPublic:
		return VisibilityPublic, true
	case VisibilityPrivate:
		return VisibilityPrivate, true
	}
	return "", false
}

// TargetType selects which side of a polymorphic title-or-unit
// reference a guide or memo points at.
type TargetType string

const (
	TargetTitle TargetType = "TITLE"
	TargetUnit  TargetType = "UNIT"
)

func ParseTargetType(s string) (TargetType, bool) {
	switch TargetType(strings.ToUpper(strings.TrimSpace(s))) {
	case TargetTitle:
		return TargetTitle, true
	case TargetUnit:
		return TargetUnit, true
	}
	return "", false
}

type AcquisitionType string

const (
	AcquisitionPurchase     AcquisitionType = "PURCHASE"
	AcquisitionSubscription AcquisitionType = "SUBSCRIPTION"
	AcquisitionGift         AcquisitionType = "GIFT"
)

func ParseAcquisitionType(s string) (AcquisitionType, bool) {
	switch AcquisitionType(strings.ToUpper(strings.TrimSpace(s))) {
	case AcquisitionPurchase:
		return AcquisitionPurchase, true
	case AcquisitionSubscription:
		return AcquisitionSubscription, true
	case AcquisitionGift:
		return AcquisitionGift, true
	}
	return "", false
}
