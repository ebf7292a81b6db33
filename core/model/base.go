package model

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが学習済みの状態
	Fitted
)

// BaseEstimator は全てのモデルの基底となる構造体
// Stateは公開フィールドのため、埋め込んだモデルをgobでシリアライズすると
// 学習状態も他のフィールドと一緒に保存される。GobEncoderは実装しない:
// 埋め込みによってメソッドが外側のモデルに昇格すると、モデル全体の
// エンコードが学習状態のみに縮退してしまう
type BaseEstimator struct {
	// State はモデルの学習状態
	State EstimatorState
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.State == Fitted
}

// SetFitted はモデルを学習済み状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.State = Fitted
}

// Reset はモデルを初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.State = NotFitted
}
