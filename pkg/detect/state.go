package detect

// Kind enumerates the outcomes of a detection pass.
type Kind int

const (
	Unknown Kind = iota
	RetailActivated
	CustomEditionActivated
	SteamMccFound
	WinStoreMccFound
	NotFound
	PatchQueued
	ManifestMissing
)

var kindNames = map[Kind]string{
	Unknown:                "Unknown",
	RetailActivated:        "RetailActivated",
	CustomEditionActivated: "CustomEditionActivated",
	SteamMccFound:          "SteamMccFound",
	WinStoreMccFound:       "WinStoreMccFound",
	NotFound:               "NotFound",
	PatchQueued:            "PatchQueued",
	ManifestMissing:        "ManifestMissing",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// State is the immutable result of Detect.
type State struct {
	Kind Kind
	// Path is the halo1.dll location for the MCC kinds.
	Path string
	// Reason is the user facing line explaining an activation, if any.
	Reason string
	// Version is the release named by the deployment manifest.
	Version string

	CustomActivated bool
	RetailActivated bool
	PatchQueued     bool

	// SteamStatus and WinStoreStatus are set when the matching probe ran.
	SteamStatus    string
	WinStoreStatus string
}

// Activates reports whether this state should queue the DRM bypass.
func (s State) Activates() bool {
	switch s.Kind {
	case RetailActivated, SteamMccFound, WinStoreMccFound:
		return true
	}
	return false
}
