package decomposition

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/pcaffine/pkg/errors"
)

// SKLearnPCA は scikit-learn の PCA を学習後に JSON へ書き出したときの属性。
// 属性名は sklearn の末尾アンダースコア付きの名前に従う。
// 含まれていない属性（explained_variance_ratio_ など）は無視される。
type SKLearnPCA struct {
	Components        [][]float64 `json:"components_"`
	Mean              []float64   `json:"mean_"`
	ExplainedVariance []float64   `json:"explained_variance_"`
	Whiten            bool        `json:"whiten"`
	NComponents       *int        `json:"n_components_,omitempty"`
	NFeaturesIn       *int        `json:"n_features_in_,omitempty"`
}

// LoadSKLearnPCAFile はファイルから sklearn PCA の属性を読み込み PCAModel を返す
//
// Python 側での書き出し例:
//
//	json.dump({
//	    "components_": pca.components_.tolist(),
//	    "mean_": pca.mean_.tolist(),
//	    "explained_variance_": pca.explained_variance_.tolist(),
//	    "whiten": pca.whiten,
//	    "n_components_": int(pca.n_components_),
//	}, f)
func LoadSKLearnPCAFile(path string) (PCAModel, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open PCA model %s", path)
	}
	defer f.Close()

	return LoadSKLearnPCA(f)
}

// LoadSKLearnPCA は r から sklearn PCA の属性を読み込み、検証済みの PCAModel を返す
func LoadSKLearnPCA(r io.Reader) (PCAModel, error) {
	const op = "PCA.LoadSKLearn"

	var attrs SKLearnPCA
	if err := json.NewDecoder(r).Decode(&attrs); err != nil {
		return nil, errors.Wrap(err, "failed to parse sklearn PCA JSON")
	}

	// 付随する形状の属性がある場合は実際の配列と照合する
	if attrs.NComponents != nil && *attrs.NComponents != len(attrs.Components) {
		return nil, errors.NewInvalidModelError(op, "n_components_ does not match components_",
			errors.NewDimensionError(op, *attrs.NComponents, len(attrs.Components), 0))
	}
	if attrs.NFeaturesIn != nil && len(attrs.Components) > 0 && *attrs.NFeaturesIn != len(attrs.Components[0]) {
		return nil, errors.NewInvalidModelError(op, "n_features_in_ does not match components_",
			errors.NewDimensionError(op, *attrs.NFeaturesIn, len(attrs.Components[0]), 1))
	}
	if attrs.Whiten && attrs.ExplainedVariance == nil {
		return nil, errors.NewInvalidModelError(op, "whiten is set but explained_variance_ is missing", nil)
	}

	pca, err := FromAttributes(attrs.Components, attrs.Mean, attrs.ExplainedVariance, attrs.Whiten)
	if err != nil {
		return nil, err
	}
	return pca, nil
}

// Attributes は PCAModel を sklearn の属性形式に戻す。
// LoadSKLearnPCA と対になり、テストや合成モデルの書き出しに使う。
func Attributes(pca PCAModel) (*SKLearnPCA, error) {
	var base *Unwhitened
	attrs := &SKLearnPCA{}

	switch m := pca.(type) {
	case *Unwhitened:
		base = m
	case *Whitened:
		base = &m.Unwhitened
		attrs.Whiten = true
		attrs.ExplainedVariance = m.Variance()
	default:
		return nil, errors.NewInvalidModelError("PCA.Attributes", fmt.Sprintf("unsupported model %T", pca), nil)
	}

	dOut, dIn := base.NComponents(), base.NFeatures()
	attrs.Components = make([][]float64, dOut)
	for i := range attrs.Components {
		attrs.Components[i] = append([]float64(nil), base.Components.RawRowView(i)...)
	}
	attrs.Mean = base.Mean()
	attrs.NComponents = &dOut
	attrs.NFeaturesIn = &dIn
	return attrs, nil
}
