package cli

func regCommands() {
	//DID
	didCmd.AddCommand(did_createCmd)
	didCmd.AddCommand(did_readCmd)
	didCmd.AddCommand(did_updateCmd)
	didCmd.AddCommand(did_linkCmd)
	didCmd.AddCommand(did_keygenCmd)

	//Credentials
	credential_accessCmd.AddCommand(access_issueCmd)
	credential_accessCmd.AddCommand(access_verifyCmd)
	credential_accessCmd.AddCommand(access_revokeCmd)
	credential_roleCmd.AddCommand(role_issueCmd)
	credential_roleCmd.AddCommand(role_verifyCmd)
	credential_roleCmd.AddCommand(role_revokeCmd)
	credential_claimCmd.AddCommand(claim_issueCmd)
	credential_claimCmd.AddCommand(claim_readCmd)
	credential_claimCmd.AddCommand(claim_revokeCmd)
	credentialCmd.AddCommand(credential_accessCmd)
	credentialCmd.AddCommand(credential_roleCmd)
	credentialCmd.AddCommand(credential_claimCmd)

	//Tokens
	tokenCmd.AddCommand(token_parentCmd)
	tokenCmd.AddCommand(token_childCmd)
	tokenCmd.AddCommand(token_transferCmd)
	tokenCmd.AddCommand(token_readCmd)
	tokenCmd.AddCommand(token_childrenCmd)
	tokenCmd.AddCommand(token_interactorsCmd)
	tokenCmd.AddCommand(token_checkCmd)

	//Traceability
	traceCmd.AddCommand(trace_createCmd)
	traceCmd.AddCommand(trace_readCmd)
	traceCmd.AddCommand(trace_queryCmd)

	//Compliance
	standardCmd.AddCommand(standard_registerCmd)
	standardCmd.AddCommand(standard_readCmd)
	complianceCmd.AddCommand(compliance_verifyCmd)
	complianceCmd.AddCommand(compliance_certifyCmd)
	complianceCmd.AddCommand(compliance_certificateCmd)
	complianceCmd.AddCommand(compliance_grantCmd)

	//Ledger
	ledgerCmd.AddCommand(ledger_exportCmd)
	ledgerCmd.AddCommand(ledger_importCmd)

	//Root
	rootCmd.AddCommand(didCmd)
	rootCmd.AddCommand(credentialCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(standardCmd)
	rootCmd.AddCommand(complianceCmd)
	rootCmd.AddCommand(ledgerCmd)
}
