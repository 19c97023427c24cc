package view

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const photoColumns = 4

// PhotoList renders finished photo thumbnails in insertion order.
type PhotoList interface {
	SetPhotos(thumbs [][]byte)
}

type photoList struct {
	frame  *FrameWidget
	labels []*LabelWidget
	photos []*Img
	empty  *LabelWidget
}

// NewPhotoList creates the container frame at row.
func NewPhotoList(row int) PhotoList {
	f := Frame(Borderwidth(1), Relief("groove"))
	Grid(f, Row(row), Column(0), Columnspan(5), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	empty := Label(Txt("No photos yet"))
	Grid(empty, In(f), Row(0), Column(0), Sticky("w"), Padx("0.4m"))
	return &photoList{frame: f, empty: empty}
}

// SetPhotos rebuilds the thumbnail grid.
func (v *photoList) SetPhotos(thumbs [][]byte) {
	if v == nil || v.frame == nil {
		return
	}
	for _, l := range v.labels {
		Destroy(l)
	}
	for _, p := range v.photos {
		p.Delete()
	}
	v.labels, v.photos = v.labels[:0], v.photos[:0]
	if len(thumbs) == 0 {
		v.empty.Configure(Txt("No photos yet"))
		return
	}
	v.empty.Configure(Txt(""))
	for i, b := range thumbs {
		p := NewPhoto(Data(b))
		l := Label(Image(p), Borderwidth(1), Relief("sunken"))
		Grid(l, In(v.frame), Row(1+i/photoColumns), Column(i%photoColumns), Padx("0.3m"), Pady("0.3m"))
		v.photos = append(v.photos, p)
		v.labels = append(v.labels, l)
	}
}
