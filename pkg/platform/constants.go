// Package platform normalizes the operating system and language labels of
// installers and selects the installers a download run should fetch.
package platform

const (
	// OSWindows represents Windows installers.
	OSWindows = "windows"
	// OSMac represents macOS installers.
	OSMac = "mac"
	// OSLinux represents Linux installers.
	OSLinux = "linux"

	// LanguageEnglish is the language used by the English fallback.
	LanguageEnglish = "en"
)

// ValidOS returns the operating systems installers are published for.
func ValidOS() []string {
	return []string{OSWindows, OSMac, OSLinux}
}

// ValidLanguages returns the language codes the catalog uses.
func ValidLanguages() []string {
	return []string{
		"en", "bl", "ru", "ar", "br", "jp", "ko", "fr", "cn", "cz",
		"hu", "pt", "tr", "nl", "ro", "es", "pl", "it", "de", "da",
		"sv", "fi", "no", "es_mx", "is", "uk", "th", "zh",
	}
}
