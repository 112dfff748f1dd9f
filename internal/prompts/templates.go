package prompts

import (
	"fmt"
	"strings"

	"github.com/Rafael-2109/frete-sistema-sub023/internal/analyzer"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/mapper"
)

const SystemPrompt = `Você é o assistente de logística do sistema de fretes. Responda em português, de forma objetiva, usando SOMENTE os dados fornecidos abaixo.

REGRAS IMPORTANTES:
1. Nunca invente clientes, pedidos, notas fiscais ou totais que não estejam nos DADOS
2. Quando os DADOS informarem "Total encontrado", use exatamente esse número
3. Se os DADOS disserem que nenhum registro foi encontrado, diga isso claramente
4. Cite o cliente pelo nome quando a pergunta for sobre um cliente
5. Não repita a tabela inteira; resuma e destaque o que responde à pergunta

ANÁLISE DA PERGUNTA:
%s

CAMPOS RELEVANTES:
%s

DADOS:
%s

CONVERSA ANTERIOR:
%s

PERGUNTA ATUAL:
%s`

const FallbackMessage = "Não consegui gerar uma resposta agora. Tente novamente em instantes ou reformule a pergunta."

const noHistory = "Sem conversa anterior."

// PromptInput carries everything the answer prompt is built from.
type PromptInput struct {
	Query       string
	Analysis    analyzer.QueryAnalysis
	Mapping     mapper.FieldMapping
	ContextText string
	History     string
	// ExpectedClient is set when the previous attempt loaded data for the
	// wrong client.
	ExpectedClient string
}

func BuildAnswerPrompt(in PromptInput) string {
	history := strings.TrimSpace(in.History)
	if history == "" {
		history = noHistory
	}

	prompt := fmt.Sprintf(SystemPrompt,
		buildAnalysisSection(in.Analysis),
		buildFieldsSection(in.Mapping),
		strings.TrimSpace(in.ContextText),
		history,
		strings.TrimSpace(in.Query),
	)

	if in.ExpectedClient != "" {
		prompt += fmt.Sprintf("\n\nATENÇÃO: a conversa é sobre o cliente %s. Responda apenas sobre ele.", in.ExpectedClient)
	}
	return prompt
}

func buildAnalysisSection(a analyzer.QueryAnalysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "- Domínio: %s\n", a.Domain)
	fmt.Fprintf(&b, "- Tipo de consulta: %s\n", a.QueryType)
	fmt.Fprintf(&b, "- Período: %s (%d dias)\n", a.Period.Description, a.Period.Days)
	if a.Client != nil {
		fmt.Fprintf(&b, "- Cliente: %s\n", a.Client.CanonicalName)
	}

	f := a.Filters
	if f.Status != "" {
		fmt.Fprintf(&b, "- Status: %s\n", f.Status)
	}
	if f.Urgency {
		b.WriteString("- Urgente: sim\n")
	}
	if f.StateCode != "" {
		fmt.Fprintf(&b, "- UF: %s\n", f.StateCode)
	}
	if f.Carrier != "" {
		fmt.Fprintf(&b, "- Transportadora: %s\n", f.Carrier)
	}

	e := a.Entities
	writeList(&b, "Notas fiscais", e.InvoiceNumbers)
	writeList(&b, "Pedidos", e.OrderNumbers)
	writeList(&b, "CNPJs", e.CNPJs)
	writeList(&b, "Datas", e.Dates)
	writeList(&b, "Valores", e.MoneyValues)

	return strings.TrimRight(b.String(), "\n")
}

func writeList(b *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(values, ", "))
}

func buildFieldsSection(m mapper.FieldMapping) string {
	if m.Model == "" {
		return "(nenhum)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Modelo: %s", m.Model)
	for _, f := range m.Fields {
		fmt.Fprintf(&b, "\n- %s → %s", f.Term, f.Field)
	}
	return b.String()
}

// CleanAnswer trims the generated text and drops a surrounding code fence.
func CleanAnswer(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
