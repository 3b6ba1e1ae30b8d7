package api

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
)

// One codec per cache-key namespace. Cached payloads are always typed structs
// serialized through these functions — never untyped dynamic values — so a
// schema change is a visible diff here rather than a silent shape drift.

func EncodeGraphView(v *GraphView) ([]byte, error) {
	return marshal(v)
}

func DecodeGraphView(data []byte) (*GraphView, error) {
	var v GraphView
	if err := oj.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode graph view: %w", err)
	}
	return &v, nil
}

func EncodeThreadTreeView(v *ThreadTreeView) ([]byte, error) {
	return marshal(v)
}

func DecodeThreadTreeView(data []byte) (*ThreadTreeView, error) {
	var v ThreadTreeView
	if err := oj.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode thread tree: %w", err)
	}
	return &v, nil
}

func EncodeMessagePage(v *MessagePage) ([]byte, error) {
	return marshal(v)
}

func DecodeMessagePage(data []byte) (*MessagePage, error) {
	var v MessagePage
	if err := oj.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode message page: %w", err)
	}
	return &v, nil
}

func EncodeCorpusStats(v *CorpusStats) ([]byte, error) {
	return marshal(v)
}

func DecodeCorpusStats(data []byte) (*CorpusStats, error) {
	var v CorpusStats
	if err := oj.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode corpus stats: %w", err)
	}
	return &v, nil
}

func marshal(v any) ([]byte, error) {
	data, err := oj.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode cache payload: %w", err)
	}
	return data, nil
}
