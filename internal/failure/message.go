package failure

import (
	"errors"
	"strings"
)

// ErrOfflineDeclined is returned when the service looked offline and the user
// chose not to try anyway.
var ErrOfflineDeclined = errors.New("service offline and override declined")

// Explanation is a user-facing description of a failure.
type Explanation struct {
	Title       string
	Detail      string
	Suggestions []string
}

// String renders the explanation as multi-line text.
func (e Explanation) String() string {
	var b strings.Builder
	b.WriteString(e.Title)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSugestões:")
		for _, s := range e.Suggestions {
			b.WriteString("\n• ")
			b.WriteString(s)
		}
	}
	return b.String()
}

// Short renders the title and detail on one line, without suggestions.
func (e Explanation) Short() string {
	if e.Detail == "" {
		return e.Title
	}
	return e.Title + ": " + e.Detail
}

// Explain maps err to a specific, actionable message.
func Explain(err error) Explanation {
	if err == nil {
		return Explanation{}
	}

	var fe *Error
	if !errors.As(err, &fe) {
		return Explanation{Title: "Erro desconhecido ao gerar PDF", Detail: err.Error()}
	}

	switch fe.Kind {
	case KindValidation:
		return Explanation{
			Title:  "Dados do projeto incompletos",
			Detail: fe.Message,
		}
	case KindTimeout:
		return Explanation{
			Title: "Timeout na requisição - a API demorou muito para responder",
			Suggestions: []string{
				"Verifique sua conexão com a internet",
				"Tente novamente em alguns minutos",
			},
		}
	case KindNetwork:
		if errors.Is(err, ErrOfflineDeclined) {
			return Explanation{
				Title:       "Geração cancelada: a API parece estar offline",
				Suggestions: []string{"Teste a conexão novamente antes de gerar"},
			}
		}
		return Explanation{
			Title:  "Não foi possível conectar com a API",
			Detail: causeText(fe),
			Suggestions: []string{
				"Verifique se a API está online",
				"Verifique sua conexão com a internet",
				"Tente usar uma rede diferente",
			},
		}
	case KindService:
		if fe.StatusCode == 0 {
			return Explanation{
				Title:  "Resposta inválida da API",
				Detail: firstNonEmpty(fe.Message, fe.Body),
				Suggestions: []string{
					"Verifique se as imagens foram carregadas corretamente",
					"Tente novamente em alguns minutos",
				},
			}
		}
		return Explanation{
			Title:  "Erro do servidor",
			Detail: fe.Error(),
			Suggestions: []string{
				"Verifique se todos os campos estão preenchidos",
				"Verifique se as imagens foram carregadas corretamente",
			},
		}
	case KindDelivery:
		return Explanation{
			Title:  "O PDF foi gerado, mas não pôde ser salvo",
			Detail: fe.Message,
			Suggestions: []string{
				"Verifique a pasta de destino e as permissões de escrita",
				"Tente gerar novamente para repetir o download",
			},
		}
	}
	return Explanation{Title: "Erro desconhecido ao gerar PDF", Detail: err.Error()}
}

// UserMessage is Explain(err).String().
func UserMessage(err error) string {
	return Explain(err).String()
}

func causeText(fe *Error) string {
	if fe.Err != nil {
		return fe.Err.Error()
	}
	return fe.Message
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
