package banking

import (
	"fmt"
	"strings"
)

const (
	msgGreeting = "Olá! Bem-vindo ao Banco Ágil. 🏦\n\n" +
		"Sou seu assistente virtual e estou aqui para ajudá-lo.\n\n" +
		"Para começarmos, por favor, informe seu CPF (somente números):"

	msgFarewell          = "Obrigado por utilizar o Banco Ágil! Até logo! 👋"
	msgEmptyInput        = "Não recebi nenhuma mensagem. Pode repetir, por favor?"
	msgAskBirthDate      = "Obrigado! Agora, por favor, informe sua data de nascimento no formato DD/MM/AAAA:"
	msgInvalidNationalID = "Desculpe, não consegui identificar um CPF válido. Por favor, informe apenas os 11 números do CPF:"
	msgInvalidBirthDate  = "Por favor, informe a data de nascimento no formato DD/MM/AAAA (exemplo: 15/05/1990):"

	msgAuthExhausted = "Infelizmente não foi possível completar a autenticação após 3 tentativas. " +
		"Por favor, dirija-se a uma agência ou entre em contato com nosso SAC. Até logo!"

	msgServiceMenu = "Entendi! Posso ajudá-lo com:\n\n" +
		"💳 **Crédito**: Consultar seu limite ou solicitar aumento\n" +
		"💱 **Câmbio**: Ver cotação de moedas\n\n" +
		"Qual serviço você precisa?"

	msgIntentUnavailable = "Desculpe, não consegui concluir isso agora. Posso ajudá-lo com algo mais?"
	msgAskAmount         = "Perfeito! Qual o novo limite de crédito você gostaria de ter? Por favor, informe o valor em reais:"

	msgInterviewStart = "Entendi! Para analisarmos melhor seu perfil e verificarmos possibilidades de aumento, " +
		"preciso atualizar algumas informações.\n\nPrimeira pergunta: Qual é sua renda mensal em reais?"

	msgAskIncomeRetry     = "Por favor, informe sua renda mensal em reais (exemplo: 5000):"
	msgAskEmployment      = "Qual é o seu tipo de emprego?\n1. Formal (CLT)\n2. Autônomo\n3. Desempregado"
	msgAskEmploymentRetry = "Por favor, escolha uma opção:\n1. Formal (CLT)\n2. Autônomo\n3. Desempregado"
	msgAskExpenses        = "Quais são suas despesas fixas mensais em reais?"
	msgAskExpensesRetry   = "Por favor, informe suas despesas fixas mensais em reais:"
	msgAskDependents      = "Quantos dependentes você tem?\n0, 1, 2 ou 3+"
	msgAskDependentsRetry = "Por favor, informe o número de dependentes: 0, 1, 2 ou 3+"
	msgAskDebt            = "Você possui dívidas ativas? (sim ou não)"
	msgAskDebtRetry       = "Por favor, responda com 'sim' ou 'não'."

	msgExchangeEntry    = "Posso consultar a cotação de moedas para você. 💱\n\nQual moeda você gostaria de consultar? (exemplo: dólar, euro, libra)"
	msgAskCurrencyRetry = "Qual moeda você gostaria de consultar? (ex: dólar, euro)"
)

// Follow-up questions; also passed to the negation prompt as context.
const (
	questionAnythingElse    = "Posso ajudá-lo com algo mais?"
	questionProceedReview   = "Gostaria de prosseguir com essa análise?"
	questionAnotherCurrency = "Gostaria de consultar outra moeda?"
)

func welcomeMessage(name string) string {
	return fmt.Sprintf("Perfeito! Autenticação realizada com sucesso. ✅\n\n"+
		"Olá, %s! Como posso ajudá-lo hoje?\n\n"+
		"Posso auxiliar com:\n"+
		"💳 Consulta de limite de crédito\n"+
		"📈 Solicitação de aumento de limite\n"+
		"💱 Cotação de moedas\n\n"+
		"O que você gostaria de fazer?", name)
}

func authFailedMessage(remaining int) string {
	return fmt.Sprintf("Desculpe, os dados informados não conferem. ❌\n\n"+
		"Você tem mais %d tentativa(s).\n\n"+
		"Por favor, informe seu CPF novamente:", remaining)
}

func storeErrorMessage(err error) string {
	return fmt.Sprintf("Erro ao acessar a base de dados. Por favor, tente novamente mais tarde. Detalhes: %v", err)
}

func creditEntryMessage(limit float64, askAmount bool) string {
	if askAmount {
		return fmt.Sprintf("Perfeito! Seu limite de crédito atual é de R$ %.2f\n\n"+
			"Qual o novo limite de crédito você gostaria de ter? Por favor, informe o valor em reais:", limit)
	}
	return fmt.Sprintf("Perfeito! Seu limite de crédito atual é de R$ %.2f\n\n"+
		"Você gostaria de solicitar um aumento de limite ou precisa de alguma outra informação sobre seu crédito?", limit)
}

func creditStatusMessage(limit float64) string {
	return fmt.Sprintf("Seu limite de crédito atual é de R$ %.2f\n\nComo posso ajudá-lo com seu crédito?", limit)
}

func approvedMessage(newLimit float64) string {
	return fmt.Sprintf("✅ Ótimas notícias! Sua solicitação foi APROVADA!\n\n"+
		"Seu novo limite de crédito de R$ %.2f já está disponível para uso.\n\n%s", newLimit, questionAnythingElse)
}

func rejectedMessage(maxApproved float64) string {
	return fmt.Sprintf("❌ Infelizmente sua solicitação não pode ser aprovada no momento.\n\n"+
		"Com base no seu perfil atual, o limite máximo disponível seria de R$ %.2f.\n\n"+
		"No entanto, posso fazer uma análise mais detalhada do seu perfil financeiro que pode viabilizar o limite desejado. "+
		"Isso levará apenas alguns minutos.\n\n%s", maxApproved, questionProceedReview)
}

func requestErrorMessage(err error) string {
	return fmt.Sprintf("Erro ao processar solicitação: %v", err)
}

func interviewDoneMessage(oldScore, newScore int) string {
	return fmt.Sprintf("✅ Análise concluída!\n\n"+
		"Com base nas novas informações, seu perfil foi reavaliado. Seu score foi atualizado de %d para %d.\n\n"+
		"Agora você pode fazer uma nova solicitação de aumento de limite.\n\n"+
		"Qual seria o limite desejado?", oldScore, newScore)
}

func quoteMessage(currency, quote string) string {
	return fmt.Sprintf("💱 Cotação do %s:\n\n%s\n\n%s", strings.ToUpper(currency), quote, questionAnotherCurrency)
}

func quoteErrorMessage(err error) string {
	return fmt.Sprintf("Desculpe, não consegui consultar a cotação no momento. Erro: %v\n\n%s", err, questionAnythingElse)
}
