package api

import (
	"bytes"
	"html/template"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/junepark678/ebsi-csat/internal/sidebar"
)

var templates = template.Must(template.New("page").Parse(pageTemplate))

func init() {
	template.Must(templates.New("list").Parse(listTemplate))
}

type pageData struct {
	SessionID string
	Form      sidebar.Form
	View      sidebar.View
	Subjects  []subjectOption
}

type subjectOption struct {
	Code string
	Name string
}

var subjectOptions = func() []subjectOption {
	opts := make([]subjectOption, 0, 8)
	for i := 1; i <= 8; i++ {
		code := strconv.Itoa(i)
		opts = append(opts, subjectOption{Code: code, Name: sidebar.SubjectName(code)})
	}
	return opts
}()

func renderList(w io.Writer, v sidebar.View) error {
	return templates.ExecuteTemplate(w, "list", v)
}

// Page serves a standalone sidebar. A known ?session= id is reattached
// so a reload keeps the form and list; anything else gets a fresh session.
func (h *Handler) Page(c *fiber.Ctx) error {
	id := c.Query("session")
	ctrl, ok := h.sessions.Get(id)
	if !ok {
		id, ctrl = h.sessions.Create()
	}

	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "page", pageData{
		SessionID: id,
		Form:      ctrl.Form(),
		View:      ctrl.Render(),
		Subjects:  subjectOptions,
	})
	if err != nil {
		return err
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

const listTemplate = `<div id="problem-list-container" style="display: {{if .Visible}}block{{else}}none{{end}}">
{{- if .Notice}}<p class="notice">{{.Notice}}</p>{{end}}
<ul id="problem-list">
{{- range .Items}}
<li style="display:flex;justify-content:space-between;align-items:center;margin-bottom:5px">
<span>{{.Display}}</span>
<button type="button" class="delete-btn" data-index="{{.Index}}" style="margin-left:10px">삭제</button>
</li>
{{- end}}
</ul>
</div>`

const pageTemplate = `<!doctype html>
<html lang="ko">
<head>
<meta charset="utf-8">
<title>기출 문항 선택</title>
<style>
body { font-family: system-ui, sans-serif; margin: 16px; max-width: 360px; }
label { display: block; margin-top: 8px; font-size: 13px; }
input, select { width: 100%; padding: 6px; box-sizing: border-box; }
.row { display: flex; gap: 6px; margin-top: 12px; }
.notice { color: #555; font-size: 12px; }
</style>
</head>
<body data-session="{{.SessionID}}">
<form id="problem-form">
<label>학년 <select name="grade">
<option value="1" {{if eq .Form.Grade "1"}}selected{{end}}>고1</option>
<option value="2" {{if eq .Form.Grade "2"}}selected{{end}}>고2</option>
<option value="3" {{if eq .Form.Grade "3"}}selected{{end}}>고3</option>
</select></label>
<label>과목 <select name="subject">
{{- range .Subjects}}
<option value="{{.Code}}"{{if eq .Code $.Form.Subject}} selected{{end}}>{{.Name}}</option>
{{- end}}
</select></label>
<label>월 <input name="month" value="{{.Form.Month}}" placeholder="3"></label>
<label>연도 <input name="year" value="{{.Form.Year}}" placeholder="올해"></label>
<label>문항 번호 <input name="problem-ids" value="{{.Form.ProblemIDs}}" placeholder="1,2,15"></label>
<div class="row">
<button type="submit">검색</button>
<button type="button" id="reset-btn">초기화</button>
<button type="button" id="clear-problems-btn">목록 비우기</button>
</div>
</form>
<div id="problems">{{template "list" .View}}</div>
<label>학습지 제목 <input id="title" value="{{.Form.Title}}"></label>
<div class="row"><button type="button" id="generate-btn">학습지 만들기</button></div>
<script>
const base = "/api/sessions/" + document.body.dataset.session;
history.replaceState(null, "", "?session=" + document.body.dataset.session);
const form = document.getElementById("problem-form");
async function refresh() {
	const res = await fetch(base + "/fragment");
	document.getElementById("problems").innerHTML = await res.text();
}
async function call(method, path, body) {
	const res = await fetch(base + path, {
		method,
		headers: body ? {"Content-Type": "application/x-www-form-urlencoded; charset=UTF-8"} : {},
		body,
	});
	await refresh();
	return res;
}
form.addEventListener("submit", (e) => {
	e.preventDefault();
	call("POST", "/search", new URLSearchParams(new FormData(form)).toString());
});
document.getElementById("reset-btn").addEventListener("click", () => { form.reset(); call("POST", "/reset"); });
document.getElementById("clear-problems-btn").addEventListener("click", () => call("POST", "/clear"));
document.getElementById("generate-btn").addEventListener("click", () => {
	const title = document.getElementById("title").value;
	call("POST", "/worksheet", new URLSearchParams({title}).toString());
});
document.getElementById("problems").addEventListener("click", (e) => {
	const idx = e.target.dataset && e.target.dataset.index;
	if (idx !== undefined) call("DELETE", "/problems/" + idx);
});
</script>
</body>
</html>`
