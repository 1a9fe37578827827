package notification

import (
	"fmt"
	"html/template"
	"time"
)

const title = "🎀 Новый заказ вкусняшек!"

var monthsGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// formatDate renders t the way ru-RU locales print a long date with time,
// e.g. "15 октября 2026 г. в 14:30".
func formatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d г. в %02d:%02d",
		t.Day(), monthsGenitive[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

type itemView struct {
	Number int
	Text   string
}

type emailView struct {
	Items     []itemView
	Comment   string
	CreatedAt string
	OrderURL  string
}

var emailTemplate = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    body { font-family: Arial, sans-serif; background: linear-gradient(135deg, #FFE5F1 0%, #FFB3D9 100%); padding: 20px; margin: 0; }
    .container { max-width: 600px; margin: 0 auto; background: white; border-radius: 20px; padding: 40px; }
    .header { text-align: center; margin-bottom: 30px; }
    .header h1 { color: #FF69B4; font-size: 32px; margin: 10px 0; }
    .items-list { background: #FFF0F8; border-left: 4px solid #FF69B4; padding: 20px; margin: 20px 0; border-radius: 10px; }
    .item { padding: 10px 0; border-bottom: 1px dashed #FFB3D9; }
    .item-number { background: #FF69B4; color: white; border-radius: 50%; padding: 4px 10px; margin-right: 15px; font-weight: bold; }
    .comment { background: #FFF5FA; padding: 15px; border-radius: 10px; margin: 20px 0; font-style: italic; color: #666; }
    .button { display: inline-block; background: #FF1493; color: white; padding: 15px 40px; text-decoration: none; border-radius: 25px; font-weight: bold; }
    .date { color: #999; font-size: 14px; margin-top: 10px; }
    .footer { text-align: center; color: #999; font-size: 12px; margin-top: 30px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Новый заказ вкусняшек!</h1>
    </div>
    <p>Привет! У тебя новый заказ 💕</p>
    <div class="items-list">
      <h3>📝 Список желаний:</h3>
      {{- range .Items}}
      <div class="item"><span class="item-number">{{.Number}}</span><span>{{.Text}}</span></div>
      {{- end}}
    </div>
    {{- if .Comment}}
    <div class="comment"><strong>💬 Комментарий:</strong><br>{{.Comment}}</div>
    {{- end}}
    <p class="date">🕐 Дата заказа: {{.CreatedAt}}</p>
    <div style="text-align: center;">
      <a href="{{.OrderURL}}" class="button">👀 Посмотреть полный заказ</a>
    </div>
    <div class="footer"><p>Wishlist</p></div>
  </div>
</body>
</html>
`))
