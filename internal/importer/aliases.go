package importer

import "strings"

// columnAliases maps each logical field to the header spellings seen across
// the spreadsheets we receive. Matching is by substring containment on the
// normalized header, so "numero_cnj_origem" still resolves to cnj.
var columnAliases = map[string][]string{
	"cnj":                             {"cnj", "numero_cnj", "processo"},
	"origem":                          {"origem", "tribunal", "vara"},
	"orcamento":                       {"orcamento", "ano", "exercicio"},
	"valor_face":                      {"valor_face", "valor_de_face", "valor_principal", "valor"},
	"ultima_atualizacao":              {"ultima_atualizacao", "valor_atual", "valor_atualizado"},
	"data_atualizacao":                {"data_atualizacao", "data_ultima_atualizacao", "data"},
	"credito_principal":               {"credito_principal", "status_principal", "principal_status"},
	"honorarios_contratuais_status":   {"honorarios_contratuais_status", "status_contratuais", "contratuais_status"},
	"honorarios_sucumbenciais_status": {"honorarios_sucumbenciais_status", "status_sucumbenciais", "sucumbenciais_status"},
	"quitado":                         {"quitado", "pago", "status_pagamento"},
	"nome":                            {"nome", "cliente", "beneficiario"},
	"cpf":                             {"cpf", "documento"},
	"nascimento":                      {"nascimento", "data_nascimento", "dt_nascimento"},
	"prioridade":                      {"prioridade", "prioritario"},
	"tipo_alvara":                     {"tipo", "tipo_alvara", "modalidade"},
	"honorarios_contratuais":          {"honorarios_contratuais", "honorarios", "hon_contratuais"},
	"honorarios_sucumbenciais":        {"honorarios_sucumbenciais", "hon_sucumbenciais"},
	"fase":                            {"fase", "situacao", "status"},
	"pedido":                          {"pedido", "tipo_pedido", "requerimento"},
	"desagio":                         {"desagio", "desconto", "deságio"},
	"tipo":                            {"tipo"},
}

// findColumn returns the index of the first header containing any alias for
// key, or -1 when no header matches.
func findColumn(headers []string, key string) int {
	aliases := columnAliases[key]
	for i, h := range headers {
		for _, a := range aliases {
			if strings.Contains(h, a) {
				return i
			}
		}
	}
	return -1
}

// normalizeHeaders lower-cases and trims every header cell.
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return headers
}
