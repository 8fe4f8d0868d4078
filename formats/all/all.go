// Package all registers every built-in format adapter with the default
// registry. Import it for the side effect:
//
//	import _ "github.com/llehouerou/ripple/formats/all"
package all

import (
	_ "github.com/llehouerou/ripple/formats/flac"
	_ "github.com/llehouerou/ripple/formats/m4a"
	_ "github.com/llehouerou/ripple/formats/mp3"
	_ "github.com/llehouerou/ripple/formats/opus"
	_ "github.com/llehouerou/ripple/formats/vorbis"
	_ "github.com/llehouerou/ripple/formats/wav"
)
