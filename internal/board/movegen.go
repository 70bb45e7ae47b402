package board

// GenerateLegalMoves generates all legal moves for the position.
func (p *Board) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	return p.filterLegalMoves(ml)
}

// GeneratePseudoLegalMoves generates all pseudo-legal moves (may leave king in check).
func (p *Board) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	return ml
}

// GenerateCaptures generates all capture and promotion moves, legality-filtered.
func (p *Board) GenerateCaptures() *MoveList {
	ml := NewMoveList()
	p.generateCaptures(ml)
	return p.filterLegalMoves(ml)
}

// generateAllMoves generates all pseudo-legal moves.
func (p *Board) generateAllMoves(ml *MoveList) {
	us := p.SideToMove
	occupied := p.AllOccupied
	enemies := p.Occupied[us.Other()]

	p.generatePawnMoves(ml, us, enemies, occupied)

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		piece := NewPiece(Knight, us)
		attacks := KnightAttacks(from) & ^p.Occupied[us]
		addSimpleMoves(ml, p, from, attacks, piece)
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		piece := NewPiece(Bishop, us)
		attacks := BishopAttacks(from, occupied) & ^p.Occupied[us]
		addSimpleMoves(ml, p, from, attacks, piece)
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		piece := NewPiece(Rook, us)
		attacks := RookAttacks(from, occupied) & ^p.Occupied[us]
		addSimpleMoves(ml, p, from, attacks, piece)
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		piece := NewPiece(Queen, us)
		attacks := QueenAttacks(from, occupied) & ^p.Occupied[us]
		addSimpleMoves(ml, p, from, attacks, piece)
	}

	p.generateKingMoves(ml, us)
	p.generateCastlingMoves(ml, us)
}

// addSimpleMoves emits a Quiet or Capture move for every bit in targets,
// distinguishing the two from the board's current occupancy at `to`.
func addSimpleMoves(ml *MoveList, p *Board, from Square, targets Bitboard, piece Piece) {
	for targets != 0 {
		to := targets.PopLSB()
		if captured := p.PieceAt(to); captured != NoPiece {
			ml.Add(NewCapture(from, to, piece, captured.Type()))
		} else {
			ml.Add(NewMove(from, to, piece))
		}
	}
}

// generatePawnMoves generates all pawn moves.
func (p *Board) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied
	piece := NewPiece(Pawn, us)

	var thirdRank, promotionRank Bitboard
	var pushDir int
	if us == White {
		thirdRank, promotionRank, pushDir = Rank3, Rank8, 8
	} else {
		thirdRank, promotionRank, pushDir = Rank6, Rank1, -8
	}

	push1 := pawns.PawnAdvance(us) & empty
	push2 := (push1 & thirdRank).PawnAdvance(us) & empty
	attackL := pawns.PawnAttackLeft(us) & enemies
	attackR := pawns.PawnAttackRight(us) & enemies

	nonPromo := push1 & ^promotionRank
	for nonPromo != 0 {
		to := nonPromo.PopLSB()
		from := Square(int(to) - pushDir)
		ml.Add(NewMove(from, to, piece))
	}

	for push2 != 0 {
		to := push2.PopLSB()
		from := Square(int(to) - 2*pushDir)
		ml.Add(NewDoublePush(from, to, piece))
	}

	nonPromoL := attackL & ^promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		ml.Add(NewCapture(from, to, piece, p.PieceAt(to).Type()))
	}

	nonPromoR := attackR & ^promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		ml.Add(NewCapture(from, to, piece, p.PieceAt(to).Type()))
	}

	promoPush := push1 & promotionRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		from := Square(int(to) - pushDir)
		addPromotions(ml, from, to, us, NoPieceType)
	}

	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		addPromotions(ml, from, to, us, p.PieceAt(to).Type())
	}

	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		addPromotions(ml, from, to, us, p.PieceAt(to).Type())
	}

	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		them := us.Other()
		epAttackers := (epBB.PawnAttackLeft(them) | epBB.PawnAttackRight(them)) & pawns
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			ml.Add(NewEnPassant(from, p.EnPassant, piece))
		}
	}
}

// addPromotions adds all four promotion moves, capturing if captured != NoPieceType.
func addPromotions(ml *MoveList, from, to Square, us Color, captured PieceType) {
	for _, pt := range [4]PieceType{Queen, Rook, Bishop, Knight} {
		promoted := NewPiece(pt, us)
		if captured != NoPieceType {
			ml.Add(NewPromotionCapture(from, to, promoted, captured))
		} else {
			ml.Add(NewPromotion(from, to, promoted))
		}
	}
}

// generateKingMoves generates king moves (non-castling).
func (p *Board) generateKingMoves(ml *MoveList, us Color) {
	from := p.KingSquare[us]
	piece := NewPiece(King, us)
	attacks := KingAttacks(from) & ^p.Occupied[us]
	addSimpleMoves(ml, p, from, attacks, piece)
}

// generateCastlingMoves generates castling moves: requires the squares
// between king and rook be empty, and the king's origin, transit, and
// destination squares not attacked by the enemy.
func (p *Board) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()
	king := NewPiece(King, us)

	if us == White {
		if p.CastlingRights&WhiteKingSideCastle != 0 {
			if p.AllOccupied&(SquareBB(F1)|SquareBB(G1)) == 0 {
				if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(F1, them) && !p.IsSquareAttacked(G1, them) {
					ml.Add(NewKingCastle(E1, G1, king))
				}
			}
		}
		if p.CastlingRights&WhiteQueenSideCastle != 0 {
			if p.AllOccupied&(SquareBB(B1)|SquareBB(C1)|SquareBB(D1)) == 0 {
				if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(D1, them) && !p.IsSquareAttacked(C1, them) {
					ml.Add(NewQueenCastle(E1, C1, king))
				}
			}
		}
	} else {
		if p.CastlingRights&BlackKingSideCastle != 0 {
			if p.AllOccupied&(SquareBB(F8)|SquareBB(G8)) == 0 {
				if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(F8, them) && !p.IsSquareAttacked(G8, them) {
					ml.Add(NewKingCastle(E8, G8, king))
				}
			}
		}
		if p.CastlingRights&BlackQueenSideCastle != 0 {
			if p.AllOccupied&(SquareBB(B8)|SquareBB(C8)|SquareBB(D8)) == 0 {
				if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(D8, them) && !p.IsSquareAttacked(C8, them) {
					ml.Add(NewQueenCastle(E8, C8, king))
				}
			}
		}
	}
}

// generateCaptures generates capture and promotion moves only (the
// quiescence-search frontier).
func (p *Board) generateCaptures(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	enemies := p.Occupied[them]
	occupied := p.AllOccupied
	piece := NewPiece(Pawn, us)

	pawns := p.Pieces[us][Pawn]
	var promotionRank Bitboard
	var pushDir int
	if us == White {
		promotionRank, pushDir = Rank8, 8
	} else {
		promotionRank, pushDir = Rank1, -8
	}

	attackL := pawns.PawnAttackLeft(us) & enemies
	attackR := pawns.PawnAttackRight(us) & enemies

	nonPromoL := attackL & ^promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		ml.Add(NewCapture(from, to, piece, p.PieceAt(to).Type()))
	}

	nonPromoR := attackR & ^promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		ml.Add(NewCapture(from, to, piece, p.PieceAt(to).Type()))
	}

	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		addPromotions(ml, from, to, us, p.PieceAt(to).Type())
	}

	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		addPromotions(ml, from, to, us, p.PieceAt(to).Type())
	}

	empty := ^occupied
	push1 := pawns.PawnAdvance(us) & empty & promotionRank
	for push1 != 0 {
		to := push1.PopLSB()
		from := Square(int(to) - pushDir)
		addPromotions(ml, from, to, us, NoPieceType)
	}

	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		epAttackers := (epBB.PawnAttackLeft(them) | epBB.PawnAttackRight(them)) & pawns
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			ml.Add(NewEnPassant(from, p.EnPassant, piece))
		}
	}

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		kn := NewPiece(Knight, us)
		attacks := KnightAttacks(from) & enemies
		addSimpleMoves(ml, p, from, attacks, kn)
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		bi := NewPiece(Bishop, us)
		attacks := BishopAttacks(from, occupied) & enemies
		addSimpleMoves(ml, p, from, attacks, bi)
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		ro := NewPiece(Rook, us)
		attacks := RookAttacks(from, occupied) & enemies
		addSimpleMoves(ml, p, from, attacks, ro)
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		qu := NewPiece(Queen, us)
		attacks := QueenAttacks(from, occupied) & enemies
		addSimpleMoves(ml, p, from, attacks, qu)
	}

	from := p.KingSquare[us]
	ki := NewPiece(King, us)
	attacks := KingAttacks(from) & enemies
	addSimpleMoves(ml, p, from, attacks, ki)
}

// filterLegalMoves filters out illegal moves (those that leave king in check).
func (p *Board) filterLegalMoves(ml *MoveList) *MoveList {
	result := NewMoveList()

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if p.IsLegal(m) {
			result.Add(m)
		}
	}

	return result
}

// IsLegal returns true if the move does not leave the mover's own king
// attacked. King moves are checked directly against the target square;
// all others are checked by cloning the board and making the move, since
// search clones the board for recursion anyway.
func (p *Board) IsLegal(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	from := m.From()
	ksq := p.KingSquare[us]

	if from == ksq && !m.IsCastling() {
		occ := p.AllOccupied &^ SquareBB(from)
		return p.AttackersByColor(m.To(), them, occ) == 0
	}

	clone := p.Copy()
	clone.MakeMove(m)
	return !clone.IsSquareAttacked(ksq, them)
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Board) HasLegalMoves() bool {
	ml := p.GeneratePseudoLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the position is checkmate.
func (p *Board) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Board) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw returns true if the position is a draw by the 50-move rule,
// stalemate, or insufficient material. Repetition is tracked by the search
// driver, which holds the game's hash history; a lone Board cannot see it.
func (p *Board) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.HalfMoveClock >= 100 {
		return true
	}
	return p.IsInsufficientMaterial()
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Board) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	if wKnights+wBishops+bKnights+bBishops == 0 {
		return true
	}
	if wKnights+wBishops <= 1 && bKnights+bBishops == 0 {
		return true
	}
	if bKnights+bBishops <= 1 && wKnights+wBishops == 0 {
		return true
	}

	return false
}
