package screens

import "strings"

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// AppExiter is implemented by the host application.
// Screens can call Exit to request termination.
type AppExiter interface {
	Exit(err error)
}

// Labels are the captions of the four camera controls.
type Labels struct {
	Start  string
	Photo  string
	Rotate string
	End    string
}

// LabelsFor returns the captions for locale. Anything but Czech gets English.
func LabelsFor(locale string) Labels {
	locale = strings.ToLower(locale)
	if locale == "cs" || strings.HasPrefix(locale, "cs_") || strings.HasPrefix(locale, "cs-") {
		return Labels{Start: "Spustit", Photo: "Fotka", Rotate: "Otoč", End: "Konec"}
	}
	return Labels{Start: "Start", Photo: "Photo", Rotate: "Rotate", End: "End"}
}
