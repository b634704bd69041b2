package schema

import "github.com/prefeitura-rio/app-fomento/internal/models"

func text(name, label string, required bool) Field {
	return Field{Name: name, Label: label, Kind: KindText, Required: required}
}

func typed(kind Kind, name, label string, required bool) Field {
	return Field{Name: name, Label: label, Kind: kind, Required: required}
}

func choice(name, label string, required bool, opts []Option) Field {
	return Field{Name: name, Label: label, Kind: KindSelect, Required: required, Options: opts}
}

func multi(name, label string, required bool, opts []Option) Field {
	return Field{Name: name, Label: label, Kind: KindMultiSelect, Required: required, Options: opts}
}

var simNao = []Option{
	{Value: "sim", Label: "Sim"},
	{Value: "nao", Label: "Não"},
}

var sexoOptions = []Option{
	{Value: "feminino", Label: "Feminino"},
	{Value: "masculino", Label: "Masculino"},
	{Value: "intersexo", Label: "Intersexo"},
	{Value: "prefiro_nao_informar", Label: "Prefiro não informar"},
}

var generoOptions = []Option{
	{Value: "mulher_cis", Label: "Mulher cisgênero"},
	{Value: "homem_cis", Label: "Homem cisgênero"},
	{Value: "mulher_trans", Label: "Mulher transgênero"},
	{Value: "homem_trans", Label: "Homem transgênero"},
	{Value: "nao_binario", Label: "Não binário"},
	{Value: "outro", Label: "Outro"},
	{Value: "prefiro_nao_informar", Label: "Prefiro não informar"},
}

var orientacaoOptions = []Option{
	{Value: "heterossexual", Label: "Heterossexual"},
	{Value: "lesbica", Label: "Lésbica"},
	{Value: "gay", Label: "Gay"},
	{Value: "bissexual", Label: "Bissexual"},
	{Value: "assexual", Label: "Assexual"},
	{Value: "outra", Label: "Outra"},
	{Value: "prefiro_nao_informar", Label: "Prefiro não informar"},
}

var racaOptions = []Option{
	{Value: "branca", Label: "Branca"},
	{Value: "preta", Label: "Preta"},
	{Value: "parda", Label: "Parda"},
	{Value: "amarela", Label: "Amarela"},
	{Value: "indigena", Label: "Indígena"},
	{Value: "prefiro_nao_informar", Label: "Prefiro não informar"},
}

var deficienciaOptions = []Option{
	{Value: "fisica", Label: "Física"},
	{Value: "visual", Label: "Visual"},
	{Value: "auditiva", Label: "Auditiva"},
	{Value: "intelectual", Label: "Intelectual"},
	{Value: "psicossocial", Label: "Psicossocial"},
	{Value: "multipla", Label: "Múltipla"},
}

var faixaEtariaOptions = []Option{
	{Value: "18_24", Label: "18 a 24 anos"},
	{Value: "25_34", Label: "25 a 34 anos"},
	{Value: "35_44", Label: "35 a 44 anos"},
	{Value: "45_59", Label: "45 a 59 anos"},
	{Value: "60_mais", Label: "60 anos ou mais"},
}

var escolaridadeOptions = []Option{
	{Value: "fundamental_incompleto", Label: "Ensino fundamental incompleto"},
	{Value: "fundamental_completo", Label: "Ensino fundamental completo"},
	{Value: "medio_incompleto", Label: "Ensino médio incompleto"},
	{Value: "medio_completo", Label: "Ensino médio completo"},
	{Value: "superior_incompleto", Label: "Ensino superior incompleto"},
	{Value: "superior_completo", Label: "Ensino superior completo"},
	{Value: "pos_graduacao", Label: "Pós-graduação"},
}

var comunidadeOptions = []Option{
	{Value: "quilombola", Label: "Quilombola"},
	{Value: "indigena", Label: "Indígena"},
	{Value: "ribeirinha", Label: "Ribeirinha"},
	{Value: "cigana", Label: "Cigana"},
	{Value: "terreiro", Label: "Povo de terreiro"},
	{Value: "nenhuma", Label: "Nenhuma"},
}

var areaCulturalOptions = []Option{
	{Value: "artes_visuais", Label: "Artes visuais"},
	{Value: "artesanato", Label: "Artesanato"},
	{Value: "audiovisual", Label: "Audiovisual"},
	{Value: "circo", Label: "Circo"},
	{Value: "cultura_popular", Label: "Cultura popular"},
	{Value: "cultura_digital", Label: "Cultura digital"},
	{Value: "danca", Label: "Dança"},
	{Value: "gastronomia", Label: "Gastronomia"},
	{Value: "literatura", Label: "Literatura"},
	{Value: "musica", Label: "Música"},
	{Value: "patrimonio", Label: "Patrimônio"},
	{Value: "teatro", Label: "Teatro"},
}

var tempoAtuacaoOptions = []Option{
	{Value: "menos_1", Label: "Menos de 1 ano"},
	{Value: "1_3", Label: "De 1 a 3 anos"},
	{Value: "3_5", Label: "De 3 a 5 anos"},
	{Value: "5_10", Label: "De 5 a 10 anos"},
	{Value: "mais_10", Label: "Mais de 10 anos"},
}

var rendaOptions = []Option{
	{Value: "ate_1_sm", Label: "Até 1 salário mínimo"},
	{Value: "1_a_3_sm", Label: "De 1 a 3 salários mínimos"},
	{Value: "3_a_5_sm", Label: "De 3 a 5 salários mínimos"},
	{Value: "acima_5_sm", Label: "Acima de 5 salários mínimos"},
}

var fontesRendaOptions = []Option{
	{Value: "emprego_formal", Label: "Emprego formal"},
	{Value: "trabalho_autonomo", Label: "Trabalho autônomo"},
	{Value: "atividade_cultural", Label: "Atividade cultural"},
	{Value: "beneficio_social", Label: "Benefício social"},
	{Value: "outra", Label: "Outra"},
}

var objetivosOptions = []Option{
	{Value: "producao", Label: "Produção"},
	{Value: "circulacao", Label: "Circulação"},
	{Value: "formacao", Label: "Formação"},
	{Value: "pesquisa", Label: "Pesquisa"},
	{Value: "preservacao", Label: "Preservação"},
	{Value: "infraestrutura", Label: "Infraestrutura"},
}

var publicoOptions = []Option{
	{Value: "infantil", Label: "Infantil"},
	{Value: "juventude", Label: "Juventude"},
	{Value: "adulto", Label: "Adulto"},
	{Value: "idosos", Label: "Pessoas idosas"},
	{Value: "pcd", Label: "Pessoas com deficiência"},
	{Value: "geral", Label: "Público geral"},
}

var zonaOptions = []Option{
	{Value: string(models.ZonaNorte), Label: "Zona Norte"},
	{Value: string(models.ZonaSul), Label: "Zona Sul"},
	{Value: string(models.ZonaLeste), Label: "Zona Leste"},
	{Value: string(models.ZonaOeste), Label: "Zona Oeste"},
	{Value: string(models.ZonaCentro), Label: "Centro"},
}

var naturezaJuridicaOptions = []Option{
	{Value: "associacao", Label: "Associação"},
	{Value: "cooperativa", Label: "Cooperativa"},
	{Value: "fundacao", Label: "Fundação"},
	{Value: "mei", Label: "Microempreendedor individual"},
	{Value: "empresa", Label: "Empresa"},
	{Value: "outra", Label: "Outra"},
}

var funcionariosOptions = []Option{
	{Value: "nenhum", Label: "Nenhum"},
	{Value: "1_5", Label: "De 1 a 5"},
	{Value: "6_20", Label: "De 6 a 20"},
	{Value: "21_50", Label: "De 21 a 50"},
	{Value: "mais_50", Label: "Mais de 50"},
}

var orcamentoOptions = []Option{
	{Value: "ate_50k", Label: "Até R$ 50 mil"},
	{Value: "50k_200k", Label: "De R$ 50 mil a R$ 200 mil"},
	{Value: "200k_1m", Label: "De R$ 200 mil a R$ 1 milhão"},
	{Value: "acima_1m", Label: "Acima de R$ 1 milhão"},
}

var financiamentoOptions = []Option{
	{Value: "recursos_proprios", Label: "Recursos próprios"},
	{Value: "editais_publicos", Label: "Editais públicos"},
	{Value: "leis_incentivo", Label: "Leis de incentivo"},
	{Value: "patrocinio_privado", Label: "Patrocínio privado"},
	{Value: "doacoes", Label: "Doações"},
}

var parceriasOptions = []Option{
	{Value: "poder_publico", Label: "Poder público"},
	{Value: "escolas", Label: "Escolas"},
	{Value: "empresas", Label: "Empresas"},
	{Value: "outras_organizacoes", Label: "Outras organizações culturais"},
}

var impactoSocialOptions = []Option{
	{Value: "formacao_gratuita", Label: "Formação gratuita"},
	{Value: "acessibilidade", Label: "Ações de acessibilidade"},
	{Value: "geracao_renda", Label: "Geração de renda"},
	{Value: "territorios_vulneraveis", Label: "Atuação em territórios vulneráveis"},
}

func contatoSection() Section {
	return Section{
		Name:  "contato",
		Label: "Contato",
		Fields: []Field{
			typed(KindEmail, "email", "E-mail", true),
			typed(KindTel, "telefone", "Telefone", true),
			typed(KindTel, "whatsapp", "WhatsApp", false),
			text("redesSociais", "Redes sociais", false),
		},
	}
}

func enderecoSection() Section {
	return Section{
		Name:  "endereco",
		Label: "Endereço",
		Fields: []Field{
			text("cep", "CEP", true),
			text("logradouro", "Logradouro", true),
			text("numero", "Número", true),
			text("complemento", "Complemento", false),
			text("bairro", "Bairro", true),
			text("cidade", "Cidade", true),
			text("uf", "UF", true),
			choice("zona", "Zona", false, zonaOptions),
		},
	}
}

func informacoesDemograficasSection() Section {
	return Section{
		Name:  "informacoesDemograficas",
		Label: "Informações demográficas",
		Fields: []Field{
			choice("sexo", "Sexo", true, sexoOptions),
			choice("genero", "Identidade de gênero", true, generoOptions),
			choice("orientacaoSexual", "Orientação sexual", false, orientacaoOptions),
			choice("racaCorEtnia", "Raça, cor ou etnia", true, racaOptions),
			choice("pessoaComDeficiencia", "Pessoa com deficiência", true, simNao),
			multi("tiposDeficiencia", "Tipos de deficiência", false, deficienciaOptions),
			choice("faixaEtaria", "Faixa etária", true, faixaEtariaOptions),
			choice("escolaridade", "Escolaridade", true, escolaridadeOptions),
			multi("comunidadeTradicional", "Comunidade tradicional", false, comunidadeOptions),
		},
	}
}

var fisicaSchema = &Schema{
	Tipo: models.TipoFisica,
	Sections: []Section{
		{
			Name:  "dadosPessoais",
			Label: "Dados pessoais",
			Fields: []Field{
				text("nomeCompleto", "Nome completo", true),
				text("nomeSocial", "Nome social", false),
				text("cpf", "CPF", true),
				text("rg", "RG", true),
				typed(KindDate, "dataNascimento", "Data de nascimento", true),
			},
		},
		contatoSection(),
		enderecoSection(),
		{
			Name:  "perfilDoProponente",
			Label: "Perfil do proponente",
			Sections: []Section{
				informacoesDemograficasSection(),
				{
					Name:  "experiencia",
					Label: "Experiência",
					Fields: []Field{
						choice("principalAreaAtuacaoCultural", "Principal área de atuação cultural", true, areaCulturalOptions),
						multi("outrasAreasAtuacao", "Outras áreas de atuação", false, areaCulturalOptions),
						choice("tempoAtuacao", "Tempo de atuação", true, tempoAtuacaoOptions),
						choice("participouEditaisAnteriores", "Já participou de editais?", true, simNao),
						typed(KindTextarea, "historicoAtuacao", "Histórico de atuação", false),
					},
				},
				{
					Name:  "aspectosFinanceiros",
					Label: "Aspectos financeiros",
					Fields: []Field{
						choice("rendaMensal", "Renda mensal", true, rendaOptions),
						multi("fontesRenda", "Fontes de renda", true, fontesRendaOptions),
						choice("dependenteCultura", "A cultura é sua principal fonte de renda?", true, simNao),
						choice("beneficiarioProgramaSocial", "Beneficiário de programa social", false, simNao),
					},
				},
				{
					Name:  "objetivos",
					Label: "Objetivos",
					Fields: []Field{
						multi("objetivosFomento", "Objetivos com o fomento", true, objetivosOptions),
						multi("publicoAlvo", "Público-alvo", false, publicoOptions),
						typed(KindTextarea, "descricaoObjetivos", "Descreva seus objetivos", true),
					},
				},
			},
		},
	},
}

var juridicaSchema = &Schema{
	Tipo: models.TipoJuridica,
	Sections: []Section{
		{
			Name:  "dadosPJ",
			Label: "Dados da pessoa jurídica",
			Fields: []Field{
				text("razaoSocial", "Razão social", true),
				text("nomeFantasia", "Nome fantasia", false),
				text("cnpj", "CNPJ", true),
				typed(KindDate, "dataAbertura", "Data de abertura", true),
				text("nomeResponsavel", "Nome do responsável legal", true),
				text("cpfResponsavel", "CPF do responsável legal", true),
			},
		},
		contatoSection(),
		enderecoSection(),
		{
			Name:  "perfilPessoaJuridica",
			Label: "Perfil da organização",
			Fields: []Field{
				choice("naturezaJuridica", "Natureza jurídica", true, naturezaJuridicaOptions),
				choice("numeroFuncionarios", "Número de funcionários", true, funcionariosOptions),
				choice("faixaOrcamento", "Orçamento anual", true, orcamentoOptions),
				multi("fontesFinanciamento", "Fontes de financiamento", true, financiamentoOptions),
				multi("parcerias", "Parcerias", false, parceriasOptions),
				multi("acoesImpactoSocial", "Ações de impacto social", false, impactoSocialOptions),
				choice("principalAreaAtuacaoCultural", "Principal área de atuação cultural", true, areaCulturalOptions),
			},
		},
		{
			Name:  "perfilDoResponsavel",
			Label: "Perfil do responsável",
			Sections: []Section{
				informacoesDemograficasSection(),
			},
		},
	},
}

var coletivoSchema = &Schema{
	Tipo: models.TipoColetivo,
	Sections: []Section{
		{
			Name:  "dadosColetivo",
			Label: "Dados do coletivo",
			Fields: []Field{
				text("nomeColetivo", "Nome do coletivo", true),
				typed(KindDate, "dataFundacao", "Data de fundação", true),
				typed(KindNumber, "numeroIntegrantes", "Número de integrantes", true),
				text("nomeResponsavel", "Nome do responsável", true),
				text("cpfResponsavel", "CPF do responsável", true),
				choice("principalAreaAtuacaoCultural", "Principal área de atuação cultural", true, areaCulturalOptions),
			},
		},
		contatoSection(),
		enderecoSection(),
		{
			Name:  "perfilDoResponsavel",
			Label: "Perfil do responsável",
			Sections: []Section{
				informacoesDemograficasSection(),
				{
					Name:  "experiencia",
					Label: "Experiência do coletivo",
					Fields: []Field{
						choice("tempoAtuacao", "Tempo de atuação", true, tempoAtuacaoOptions),
						choice("participouEditaisAnteriores", "Já participou de editais?", true, simNao),
						typed(KindTextarea, "historicoAtuacao", "Histórico de atuação", false),
					},
				},
			},
		},
	},
}

var registry = map[models.Tipo]*Schema{
	models.TipoFisica:   fisicaSchema,
	models.TipoJuridica: juridicaSchema,
	models.TipoColetivo: coletivoSchema,
}
