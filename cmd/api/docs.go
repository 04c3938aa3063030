package main

// @title           POS Joalheria API
// @version         1.0
// @description     API de ponto de venda para joalheria: vendas, memos (consignação), estoque e clientes

// @contact.name   API Support

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Cabeçalho de autenticação JWT usando o esquema Bearer. Exemplo: "Bearer {token}"
