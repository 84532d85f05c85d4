// Package dicom implements the series metadata inference engine: given a
// folder of DICOM files belonging to one imaging series, it determines the
// series' true geometric and acquisition parameters and emits one
// SeriesRecord.
package dicom

import (
	"github.com/mrsinham/dicomgather/internal/dicom/tags"
)

// Standard attributes, resolved by name through the tag registry.
var (
	tagSeriesNumber          = tags.MustTag("SeriesNumber")
	tagSeriesDescription     = tags.MustTag("SeriesDescription")
	tagStudyDescription      = tags.MustTag("StudyDescription")
	tagSeriesDate            = tags.MustTag("SeriesDate")
	tagSeriesTime            = tags.MustTag("SeriesTime")
	tagMRAcquisitionType     = tags.MustTag("MRAcquisitionType")
	tagImageType             = tags.MustTag("ImageType")
	tagAcquisitionMatrix     = tags.MustTag("AcquisitionMatrix")
	tagRows                  = tags.MustTag("Rows")
	tagColumns               = tags.MustTag("Columns")
	tagPixelSpacing          = tags.MustTag("PixelSpacing")
	tagSliceThickness        = tags.MustTag("SliceThickness")
	tagSpacingBetweenSlices  = tags.MustTag("SpacingBetweenSlices")
	tagInversionTime         = tags.MustTag("InversionTime")
	tagEchoTime              = tags.MustTag("EchoTime")
	tagRepetitionTime        = tags.MustTag("RepetitionTime")
	tagFlipAngle             = tags.MustTag("FlipAngle")
	tagImagePositionPatient  = tags.MustTag("ImagePositionPatient")
	tagInstanceNumber        = tags.MustTag("InstanceNumber")
	tagDiffusionBValue       = tags.MustTag("DiffusionBValue")
	tagNumberOfAverages      = tags.MustTag("NumberOfAverages")
	tagPixelBandwidth        = tags.MustTag("PixelBandwidth")
	tagReceiveCoilName       = tags.MustTag("ReceiveCoilName")
	tagMagneticFieldStrength = tags.MustTag("MagneticFieldStrength")
)

// Vendor-private and numerically-addressed attributes.
var (
	// Siemens CSA series header blob (SV10 format, carries the protocol text).
	csaSeriesHeader = tags.Pair(0x0029, 0x1020)
	// Siemens images-per-mosaic count. On non-mosaic series the same slot
	// aliases the iPAT factor.
	siemensImagesInMosaic = tags.Pair(0x0019, 0x100A)
	// Siemens matrix-size string, formatted "<N>p*<M>". On non-mosaic series
	// the (0019,xxxx) twin of this slot aliases an acceleration factor.
	siemensMatrixSize = tags.Pair(0x0051, 0x100B)
	siemensAccelAlt   = tags.Pair(0x0019, 0x100B)
	// Siemens PAT mode text: "p<N>" in-plane, "s<N>" slice acceleration.
	siemensPATModeText = tags.Pair(0x0051, 0x1011)
	// Siemens diffusion b-value.
	siemensBValue = tags.Pair(0x0019, 0x100C)

	parallelReductionInPlane    = tags.Pair(0x0018, 0x9158)
	parallelReductionOutOfPlane = tags.Pair(0x0018, 0x9159)

	// GE multiband parameters array and ASSET/ARC acceleration factor.
	geMultibandParams = tags.Pair(0x0043, 0x10B6)
	geAssetFactor     = tags.Pair(0x0043, 0x1083)

	// Philips SENSE factor.
	philipsSENSEFactor = tags.Pair(0x2001, 0x1008)

	temporalPositionIndex    = tags.Pair(0x0020, 0x9128)
	inPlanePhaseEncDirection = tags.Pair(0x0018, 0x1312)
	patientPosition          = tags.Pair(0x0018, 0x5100)
	percentPhaseFOV          = tags.Pair(0x0018, 0x0094)
	percentSampling          = tags.Pair(0x0018, 0x0093)
)
