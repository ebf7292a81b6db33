// Package preprocessing provides encoders for preparing tabular data for
// the estimators in this library.
package preprocessing

import (
	"encoding/gob"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/skstack/core/model"
	"github.com/YuminosukeSato/skstack/pkg/errors"
)

func init() {
	gob.Register(&LookupEncoder{})
}

var _ model.Transformer = (*LookupEncoder)(nil)

// LookupEncoder はカテゴリ値を固定の対応表で数値に置き換えるエンコーダー
// 対応表に存在しないキーにはデフォルト値が代入される
//
// マッピングは構築時に与えられるため、Fitは学習を行わない（no-op）。
// Transformは入力と設定のみの純粋関数であり、対応表を変更しない
type LookupEncoder struct {
	model.BaseEstimator

	// ColumnName は変換対象のカラム名
	ColumnName string

	// Table はカテゴリ値から数値への対応表
	Table map[string]float64

	// Default は対応表に存在しないキーに代入される値
	Default float64
}

// NewLookupEncoder は新しいLookupEncoderを作成する
//
// パラメータ:
//   - columnName: 変換対象のカラム名
//   - table: カテゴリ値から数値への対応表
//   - defaultValue: 未知のキーに代入される値
//
// 使用例:
//
//	enc, err := preprocessing.NewLookupEncoder("grade", map[string]float64{"A1": 1, "A2": 2}, 4.5)
//	values, err := enc.Transform([]string{"A1", "A2", "Z9"}) // => [1, 2, 4.5]
func NewLookupEncoder(columnName string, table map[string]float64, defaultValue float64) (*LookupEncoder, error) {
	if columnName == "" {
		return nil, errors.NewValidationError("column_name", "column name must not be empty", columnName)
	}
	if len(table) == 0 {
		return nil, errors.NewValidationError("lookup_table", "lookup table must not be empty", table)
	}

	// 対応表をコピーして外部からの変更を遮断する
	copied := make(map[string]float64, len(table))
	for k, v := range table {
		copied[k] = v
	}

	enc := &LookupEncoder{
		ColumnName: columnName,
		Table:      copied,
		Default:    defaultValue,
	}
	// マッピングは構築時に確定するため、この時点で変換可能
	enc.SetFitted()
	return enc, nil
}

// Fit は何も学習しない（対応表は構築時に与えられる）
func (l *LookupEncoder) Fit(_ []string) error {
	l.SetFitted()
	return nil
}

// Transform は各値を対応表で変換したベクトルを返す
// 対応表に存在しないキーにはデフォルト値が代入される
func (l *LookupEncoder) Transform(values []string) (*mat.VecDense, error) {
	if !l.IsFitted() {
		return nil, errors.NewNotFittedError("LookupEncoder", "Transform")
	}
	if len(values) == 0 {
		return nil, errors.NewModelError("LookupEncoder.Transform", "empty data", errors.ErrEmptyData)
	}

	out := mat.NewVecDense(len(values), nil)
	for i, v := range values {
		if mapped, ok := l.Table[v]; ok {
			out.SetVec(i, mapped)
		} else {
			out.SetVec(i, l.Default)
		}
	}
	return out, nil
}

// FitTransform はFitとTransformを同時に実行する
func (l *LookupEncoder) FitTransform(values []string) (*mat.VecDense, error) {
	if err := l.Fit(values); err != nil {
		return nil, err
	}
	return l.Transform(values)
}

// TransformRecords はヘッダー付きレコードから対象カラムを探して変換する
// 対象カラムが存在しない場合はエラーを返す
func (l *LookupEncoder) TransformRecords(header []string, records [][]string) (*mat.VecDense, error) {
	if !l.IsFitted() {
		return nil, errors.NewNotFittedError("LookupEncoder", "TransformRecords")
	}

	col := -1
	for i, name := range header {
		if name == l.ColumnName {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, errors.NewValueError("LookupEncoder.TransformRecords",
			fmt.Sprintf("column %q not found in header", l.ColumnName))
	}

	values := make([]string, len(records))
	for i, record := range records {
		if col >= len(record) {
			return nil, errors.NewValueError("LookupEncoder.TransformRecords",
				fmt.Sprintf("record %d has no column %d", i, col))
		}
		values[i] = record[col]
	}

	return l.Transform(values)
}

// GetParams はエンコーダーのパラメータを取得する
func (l *LookupEncoder) GetParams() map[string]interface{} {
	table := make(map[string]float64, len(l.Table))
	for k, v := range l.Table {
		table[k] = v
	}
	return map[string]interface{}{
		"column_name":   l.ColumnName,
		"lookup_table":  table,
		"default_value": l.Default,
	}
}

// String はエンコーダーの文字列表現を返す
func (l *LookupEncoder) String() string {
	return fmt.Sprintf("LookupEncoder(column_name=%q, n_keys=%d, default_value=%g)",
		l.ColumnName, len(l.Table), l.Default)
}
