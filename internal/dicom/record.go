package dicom

// SeriesRecord is the per-series summary row. Every field is scalar: absent
// values are nil pointers or empty strings, which gocsv renders as empty
// cells. Column order matches the summary layout downstream tooling expects.
type SeriesRecord struct {
	SeriesNumber           string   `csv:"SeriesNumber"`
	FolderName             string   `csv:"FolderName"`
	SeriesDescription      string   `csv:"SeriesDescription"`
	MRAcquisitionType      string   `csv:"MRAcquisitionType"`
	XDim                   *int     `csv:"X_Dim"`
	YDim                   *int     `csv:"Y_Dim"`
	ZDim                   *int     `csv:"Z_Dim"`
	XVoxel                 *float64 `csv:"X_Voxel"`
	YVoxel                 *float64 `csv:"Y_Voxel"`
	ZVoxel                 *float64 `csv:"Z_Voxel"`
	SliceGap               *float64 `csv:"SliceGap"`
	InversionTime          *float64 `csv:"InversionTime"`
	EchoTime               *float64 `csv:"EchoTime"`
	RepetitionTime         *float64 `csv:"RepetitionTime"`
	FlipAngle              *float64 `csv:"FlipAngle"`
	Position               string   `csv:"Position"`
	StudyDescription       string   `csv:"StudyDescription"`
	SeriesAcqTime          string   `csv:"SeriesAcqTime"`
	DiffusionBValue        *float64 `csv:"DiffusionBValue"`
	NumberOfVolumes        *int     `csv:"NumberOfVolumes"`
	NumberOfB0s            *int     `csv:"NumberOfB0s"`
	MultibandFactor        *float64 `csv:"MultibandFactor"`
	InplaneAccelFactor     *float64 `csv:"InplaneAccelFactor"`
	PhaseEncodingDirection string   `csv:"PhaseEncodingDirection"`
	NumberOfAverages       *float64 `csv:"NumberOfAverages"`
	Bandwidth              *float64 `csv:"Bandwidth"`
	CoilName               string   `csv:"CoilName"`
	SliceOrientation       string   `csv:"SliceOrientation"`
	MagneticFieldStrength  *float64 `csv:"MagneticFieldStrength"`
	PercentPhaseFOV        *float64 `csv:"PercentPhaseFOV"`
	PercentSampling        *float64 `csv:"PercentSampling"`
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
