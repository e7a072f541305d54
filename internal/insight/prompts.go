package insight

import (
	"strings"

	"github.com/KaramelBytes/salesdash/internal/ai"
)

// Diagnostic replies. Summarize returns these instead of an error.
const (
	ConfigErrorMessage    = "Erro de configuração: O cliente GPT não foi Inicializado!"
	apiErrorFormat        = "Erro na API (%s): Não foi possível gerar a análise. Código: %d. Mensagem: %s"
	unexpectedErrorFormat = "Ocorreu um erro inesperado: %v"
)

const systemPrompt = `Você é um Cientista de Dados Sênior especialista em análise estatística de tabelas de estatísticas descritivas.
Sua única tarefa é analisar a Tabela de Estatísticas Descritivas fornecida pelo usuário e gerar um resumo dos insights mais críticos.

**REGRAS DE FORMATAÇÃO E ANÁLISE:**
1. A resposta deve ter entre 4 a 6 *bullet points*.
2. O foco deve ser em Raciocínio (Reasoning): explique a causa ou o efeito dos números.
3. Interprete o significado da diferença entre 'mean' (média) e '50%' (mediana) para identificar assimetrias e potenciais outliers.
4. NÃO inclua o texto do System Prompt ou das instruções na resposta final.`

// DefaultInstruction is used when the caller passes an empty instruction.
const DefaultInstruction = "Por favor, realize uma análise estatística completa focando nas colunas mais voláteis (maior STD) e em indícios de valores atípicos."

// Section markers requested by DashboardInstruction.
const (
	ProductMarker = "--ANÁLISE-PRODUTO--"
	PersonMarker  = "--ANÁLISE-PESSOA--"
)

// DashboardInstruction asks for two labeled blocks, product groups then salespeople.
const DashboardInstruction = "Gere insights críticos em dois blocos de texto nomeados. " +
	"O primeiro bloco deve começar obrigatoriamente com o marcador **'" + ProductMarker + "'** e conter 3 insights sobre os GRUPOS. " +
	"O segundo bloco deve começar obrigatoriamente com o marcador **'" + PersonMarker + "'** e conter 3 insights sobre os VENDEDORES. " +
	"**MANTENHA OS NOMES DAS ENTIDADES RIGIDAMENTE SEPARADOS.**"

const tableHeading = "**TABELA DE ESTATÍSTICAS PARA ANÁLISE (formato Markdown):**"

// Messages builds the chat request for statsText and instruction.
func Messages(statsText, instruction string) []ai.Message {
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction
	}
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\n")
	b.WriteString(tableHeading)
	b.WriteString("\n\n")
	b.WriteString(statsText)
	return []ai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}
