package dicom

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/dicomgather/internal/dicom/tags"
)

func mustNewElement(t tag.Tag, data any) *dicom.Element {
	elem, err := dicom.NewElement(t, data)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}

// mustNewPrivateElement creates an element with a private tag and explicit
// VR, which dicom.NewElement refuses for unregistered tags.
func mustNewPrivateElement(t tag.Tag, rawVR string, data any) *dicom.Element {
	value, err := dicom.NewValue(data)
	if err != nil {
		panic(fmt.Sprintf("failed to create value for private element %v: %v", t, err))
	}
	return &dicom.Element{
		Tag:                    t,
		ValueRepresentation:    tag.GetVRKind(t, rawVR),
		RawValueRepresentation: rawVR,
		Value:                  value,
	}
}

// baseElements is the minimal header shared by generated test files. The
// padding blob keeps each file above the scanner's size threshold.
func baseElements(seriesNum, seriesDesc string, instance int) []*dicom.Element {
	return []*dicom.Element{
		mustNewElement(tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}),
		mustNewElement(tag.SOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.4"}),
		mustNewElement(tag.SOPInstanceUID, []string{fmt.Sprintf("1.2.826.0.1.3680043.8.498.1.%d", instance)}),
		mustNewElement(tag.Modality, []string{"MR"}),
		mustNewElement(tag.SeriesNumber, []string{seriesNum}),
		mustNewElement(tag.SeriesDescription, []string{seriesDesc}),
		mustNewElement(tag.InstanceNumber, []string{fmt.Sprintf("%d", instance)}),
		mustNewPrivateElement(tag.Tag{Group: 0x0011, Element: 0x1001}, "OB", make([]byte, 2048)),
	}
}

func writeTestFile(t *testing.T, path string, elements []*dicom.Element) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()
	ds := dicom.Dataset{Elements: elements}
	if err := dicom.Write(f, ds, dicom.SkipVRVerification(), dicom.SkipValueTypeVerification()); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// writeSeriesFile writes one synthetic series member under dir and returns
// its path.
func writeSeriesFile(t *testing.T, dir, name, seriesNum, seriesDesc string, instance int, extra ...*dicom.Element) string {
	t.Helper()
	path := filepath.Join(dir, name)
	writeTestFile(t, path, append(baseElements(seriesNum, seriesDesc, instance), extra...))
	return path
}

// newTestSet wraps in-memory elements so resolver logic can be exercised
// without touching disk.
func newTestSet(elements ...*dicom.Element) *tags.Set {
	full := append([]*dicom.Element{
		mustNewElement(tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}),
	}, elements...)
	return tags.NewSet(dicom.Dataset{Elements: full})
}
