package domain

// FormField는 모달 입력 필드 하나의 선언입니다.
type FormField struct {
	BlockID   string
	ActionID  string
	Label     string
	Multiline bool
}

// Form은 모달 하나의 선언입니다.
// 모달 생성과 제출 값 추출 양쪽에서 같은 선언을 사용합니다.
type Form struct {
	CallbackID  string
	Title       string
	SubmitLabel string
	Fields      []FormField
}

// Field는 block ID로 필드 선언을 찾습니다.
func (f Form) Field(blockID string) (FormField, bool) {
	for _, field := range f.Fields {
		if field.BlockID == blockID {
			return field, true
		}
	}
	return FormField{}, false
}
