package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"guidechat/internal/extractor"
	"guidechat/internal/logging"
	"guidechat/internal/metrics"
	"guidechat/internal/model"
	"guidechat/internal/utils"
)

// Prompt texts shown to the user
const (
	msgChooseService = "Bạn muốn được giúp đỡ tìm kiếm về vấn đề nào?"
	msgAskBudget     = "Vui lòng cho Chatbot biết ngân sách hàng tháng của bạn để Bot có thể tìm kiếm các lựa chọn phù hợp?"
	msgAskMore       = "Ngoài ra bạn còn cần thêm yêu cầu nào khác dưới đây không?"
	msgAskLocation   = "Vui lòng cho biết khu vực cụ thể (tỉnh, thành phố) mà bạn muốn tìm?"
	msgAskArea       = "Vui lòng nhập diện tích mà bạn mong muốn (m2)?"
	msgAskAmenities  = "Vui lòng cho biết những tiện ích bạn mong muốn?"
	msgAskUniversity = "Nhập thêm trường đại học mà bạn đang theo học?"
	msgConfirm       = "Bạn cần thêm hoặc sửa yêu cầu không?"
	msgResults       = "Tuyệt vời! Tôi đã tìm thấy %d bài đăng phù hợp với yêu cầu của bạn."
)

var (
	serviceOptions    = []string{"Tìm trọ phù hợp", "Tìm căn hộ phù hợp"}
	additionalOptions = []string{"Khu vực cụ thể", "Diện tích chỗ thuê", "Tiện ích cần có", "Thêm thông tin khác"}
	confirmOptions    = []string{"Thêm yêu cầu", "Tìm kiếm"}
)

// Reply keywords
const (
	kwLocation  = "khu vực"
	kwArea      = "diện tích"
	kwAmenities = "tiện ích"
	kwAddMore   = "thêm"
)

// Searcher runs the search for a finished conversation.
type Searcher interface {
	Search(ctx context.Context, sessionID string, data model.CollectedData) *SearchResult
}

// Reply is the engine's answer to one message.
type Reply struct {
	Message     string
	Options     []string
	Placeholder string
	Result      *SearchResult
}

// Terminal reports whether the reply carries search results.
func (r Reply) Terminal() bool {
	return r.Result != nil
}

type stepHandler func(ctx context.Context, message string, s *model.Session) Reply

// Engine is the guided dialogue state machine.
type Engine struct {
	extract  *extractor.Extractor
	searcher Searcher
	log      *logging.Logger
	steps    map[model.StepID]stepHandler
}

// NewEngine creates a dialogue engine.
func NewEngine(extract *extractor.Extractor, searcher Searcher, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	e := &Engine{
		extract:  extract,
		searcher: searcher,
		log:      log.Sub("dialogue"),
	}
	e.steps = map[model.StepID]stepHandler{
		model.StepGreeting:          e.handleGreeting,
		model.StepPropertyType:      e.handlePropertyType,
		model.StepBudgetInput:       e.handleBudget,
		model.StepAdditionalOptions: e.handleAdditionalOptions,
		model.StepLocationInput:     e.handleLocation,
		model.StepAreaInput:         e.handleArea,
		model.StepAmenitiesInput:    e.handleAmenities,
		model.StepUniversityInput:   e.handleUniversity,
		model.StepConfirmSearch:     e.handleConfirm,
	}
	return e
}

// Advance applies one user message to a session and returns the updated
// session with the reply. The input session is not modified. A nil session
// starts a new conversation; a step without a handler runs the search.
func (e *Engine) Advance(ctx context.Context, message string, s *model.Session) (*model.Session, Reply) {
	var next *model.Session
	if s == nil {
		next = model.NewSession("")
	} else {
		next = s.Clone()
	}

	from := next.CurrentStep
	next.History = append(next.History, model.Turn{
		Role:    model.RoleUser,
		Content: message,
		Step:    from,
		At:      time.Now(),
	})

	var reply Reply
	if h, ok := e.steps[from]; ok {
		reply = h(ctx, message, next)
	} else {
		reply = e.search(ctx, next)
	}

	next.History = append(next.History, model.Turn{
		Role:    model.RoleAssistant,
		Content: reply.Message,
		Step:    next.CurrentStep,
		At:      time.Now(),
	})

	metrics.RecordTurn(string(from))
	e.log.Debug().
		Str("session_id", next.SessionID).
		Str("from", string(from)).
		Str("to", string(next.CurrentStep)).
		Msg("dialogue turn")

	return next, reply
}

func (e *Engine) handleGreeting(ctx context.Context, message string, s *model.Session) Reply {
	if loc := e.extract.Province(message); loc != "" {
		s.CollectedData.Location = loc
	}
	s.CurrentStep = model.StepPropertyType
	return Reply{Message: msgChooseService, Options: serviceOptions}
}

func (e *Engine) handlePropertyType(ctx context.Context, message string, s *model.Session) Reply {
	s.CollectedData.PropertyType = extractor.PropertyType(message)
	s.CurrentStep = model.StepBudgetInput
	return Reply{Message: msgAskBudget, Placeholder: "Ví dụ: từ 2 triệu - 3 triệu"}
}

func (e *Engine) handleBudget(ctx context.Context, message string, s *model.Session) Reply {
	budget := extractor.Budget(message)
	if budget.Empty() {
		metrics.RecordExtractionMiss("budget")
	} else {
		s.CollectedData.Budget = &budget
	}
	return e.askMore(s)
}

func (e *Engine) handleAdditionalOptions(ctx context.Context, message string, s *model.Session) Reply {
	s.CurrentStep = branchFor(message)
	switch s.CurrentStep {
	case model.StepLocationInput:
		return Reply{Message: msgAskLocation, Placeholder: "Ví dụ: Quận Gò Vấp, Huyện Hóc Môn, TP HCM"}
	case model.StepAreaInput:
		return Reply{Message: msgAskArea, Placeholder: "Ví dụ: 50"}
	case model.StepAmenitiesInput:
		return Reply{Message: msgAskAmenities, Placeholder: "Ví dụ: wifi, điều hòa, máy giặt"}
	default:
		return Reply{Message: msgAskUniversity, Placeholder: "Ví dụ: Đại học Công nghiệp TP HCM"}
	}
}

// branchFor picks the input step for a reply to the additional options
// prompt. Every reply maps to exactly one step.
func branchFor(message string) model.StepID {
	text := utils.Normalize(message)
	switch {
	case strings.Contains(text, kwLocation):
		return model.StepLocationInput
	case strings.Contains(text, kwArea):
		return model.StepAreaInput
	case strings.Contains(text, kwAmenities):
		return model.StepAmenitiesInput
	default:
		return model.StepUniversityInput
	}
}

func (e *Engine) handleLocation(ctx context.Context, message string, s *model.Session) Reply {
	details := e.extract.Location(message)
	if details.ProvinceName == "" && details.WardName == "" {
		metrics.RecordExtractionMiss("location")
	}
	s.CollectedData.LocationDetails = &details
	return e.confirm(s)
}

func (e *Engine) handleArea(ctx context.Context, message string, s *model.Session) Reply {
	if area := extractor.Area(message); area > 0 {
		s.CollectedData.Area = area
	} else {
		metrics.RecordExtractionMiss("area")
	}
	return e.confirm(s)
}

func (e *Engine) handleAmenities(ctx context.Context, message string, s *model.Session) Reply {
	sel := e.extract.Amenities(message)
	if len(sel.Names) == 0 {
		metrics.RecordExtractionMiss("amenities")
	} else {
		s.CollectedData.Amenities = &sel
	}
	return e.confirm(s)
}

func (e *Engine) handleUniversity(ctx context.Context, message string, s *model.Session) Reply {
	if u := extractor.University(message); u != "" {
		s.CollectedData.University = u
	} else {
		metrics.RecordExtractionMiss("university")
	}
	return e.confirm(s)
}

func (e *Engine) handleConfirm(ctx context.Context, message string, s *model.Session) Reply {
	if strings.Contains(utils.Normalize(message), kwAddMore) {
		return e.askMore(s)
	}
	return e.search(ctx, s)
}

func (e *Engine) askMore(s *model.Session) Reply {
	s.CurrentStep = model.StepAdditionalOptions
	return Reply{Message: msgAskMore, Options: additionalOptions}
}

func (e *Engine) confirm(s *model.Session) Reply {
	s.CurrentStep = model.StepConfirmSearch
	return Reply{Message: msgConfirm, Options: confirmOptions}
}

func (e *Engine) search(ctx context.Context, s *model.Session) Reply {
	s.CurrentStep = model.StepSearchResults
	result := e.searcher.Search(ctx, s.SessionID, s.CollectedData)
	return Reply{
		Message: fmt.Sprintf(msgResults, result.Total),
		Result:  result,
	}
}
