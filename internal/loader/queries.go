package loader

// DefaultQueries are the PostgreSQL queries used when the configuration
// provides none. $1 is the period start, $2 the client LIKE pattern.
func DefaultQueries() map[string]string {
	return map[string]string{
		"entregas": `SELECT numero_nf, raz_social_red, municipio, uf, transportadora,
       data_entrega_prevista, data_hora_entrega_realizada, status_finalizacao
  FROM entregas_monitoradas
 WHERE data_embarque >= $1 AND UPPER(raz_social_red) LIKE $2
 ORDER BY data_entrega_prevista DESC`,
		"pedidos": `SELECT num_pedido, raz_social_red, cidade_normalizada, uf_normalizada, status,
       expedicao, valor_saldo_total, peso_total
  FROM pedidos
 WHERE data_pedido >= $1 AND UPPER(raz_social_red) LIKE $2
 ORDER BY data_pedido DESC`,
		"nfe": `SELECT numero_nf, origem AS num_pedido, nome_cliente AS raz_social_red, data_fatura,
       SUM(valor_produto_faturado) AS valor_total
  FROM faturamento_produto
 WHERE data_fatura >= $1 AND UPPER(nome_cliente) LIKE $2
 GROUP BY numero_nf, origem, nome_cliente, data_fatura
 ORDER BY data_fatura DESC`,
		"embarques": `SELECT e.numero, e.transportadora, e.placa_veiculo, e.data_embarque, e.status,
       i.nota_fiscal AS numero_nf, i.cliente AS raz_social_red
  FROM embarques e
  JOIN embarque_itens i ON i.embarque_id = e.id
 WHERE e.data_embarque >= $1 AND UPPER(i.cliente) LIKE $2
 ORDER BY e.data_embarque DESC`,
		"estoque": `SELECT cod_produto, nome_produto, SUM(qtd_movimentacao) AS saldo
  FROM movimentacao_estoque
 WHERE data_movimentacao >= $1 AND $2::text IS NOT NULL
 GROUP BY cod_produto, nome_produto
 ORDER BY cod_produto`,
		"clientes": `SELECT cnpj_cpf, raz_social_red, municipio, estado AS uf, vendedor
  FROM clientes
 WHERE atualizado_em >= $1 AND UPPER(raz_social_red) LIKE $2
 ORDER BY raz_social_red`,
		"transportadoras": `SELECT t.razao_social, t.cnpj, t.cidade, t.uf, COUNT(e.id) AS embarques
  FROM transportadoras t
  LEFT JOIN embarques e ON e.transportadora_id = t.id AND e.data_embarque >= $1
 WHERE $2::text IS NOT NULL
 GROUP BY t.razao_social, t.cnpj, t.cidade, t.uf
 ORDER BY embarques DESC`,
	}
}
